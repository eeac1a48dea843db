package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	// MaxFileSizeBytes is the largest file whose content is included verbatim.
	MaxFileSizeBytes int64 = 1 * 1024 * 1024

	fileTooLargeFormat   = "[File too large (>%dMB): %s]"
	fileReadErrorFormat  = "[Error reading file %s: %v]"
	replacementCharacter = "\uFFFD"
)

// ReadFileContent returns the decoded text of path or a one-line placeholder.
// It never fails: oversized files and OS errors are reported inline.
func ReadFileContent(path string) string {
	fileInformation, statError := os.Stat(path)
	if statError != nil {
		return readErrorPlaceholder(path, statError)
	}
	if fileInformation.Size() > MaxFileSizeBytes {
		return tooLargePlaceholder(path)
	}
	return readAndDecode(path)
}

func readAndDecode(path string) string {
	// #nosec G304
	data, readError := os.ReadFile(path)
	if readError != nil {
		return readErrorPlaceholder(path, readError)
	}
	if int64(len(data)) > MaxFileSizeBytes {
		return tooLargePlaceholder(path)
	}
	return DecodeText(data)
}

// DecodeText decodes data as UTF-8, or as UTF-16 when a byte order mark says so.
// Undecodable bytes become U+FFFD.
func DecodeText(data []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, decodeError := transform.Bytes(decoder, data)
	if decodeError != nil {
		return strings.ToValidUTF8(string(data), replacementCharacter)
	}
	return string(decoded)
}

func tooLargePlaceholder(path string) string {
	return fmt.Sprintf(fileTooLargeFormat, MaxFileSizeBytes/1024/1024, filepath.Base(path))
}

func readErrorPlaceholder(path string, readError error) string {
	return fmt.Sprintf(fileReadErrorFormat, filepath.Base(path), readError)
}
