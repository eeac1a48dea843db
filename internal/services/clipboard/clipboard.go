// Package clipboard copies generated prompts to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const errorCopyFormat = "copy %d bytes to clipboard: %w"

var (
	// ErrNothingToCopy is returned for empty text.
	ErrNothingToCopy = errors.New("nothing to copy")
	// ErrUnsupported is returned when no clipboard utility is available on this system.
	ErrUnsupported = errors.New("clipboard is not supported on this system")
)

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	writeAll    func(text string) error
	unsupported func() bool
}

// NewService constructs a Service backed by the system clipboard.
func NewService() *Service {
	return &Service{
		writeAll:    clipboard.WriteAll,
		unsupported: func() bool { return clipboard.Unsupported },
	}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if text == "" {
		return ErrNothingToCopy
	}
	if service.unsupported() {
		return ErrUnsupported
	}
	if writeError := service.writeAll(text); writeError != nil {
		return fmt.Errorf(errorCopyFormat, len(text), writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
