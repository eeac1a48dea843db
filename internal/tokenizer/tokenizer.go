// Package tokenizer estimates how many model tokens a generated prompt occupies.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	errorInitializeFormat = "initialize %s tokenizer: %w"
	estimateFormat        = "%d tokens, %d characters (%s)"
)

var errNilEncoder = errors.New("nil tiktoken encoder")

var openAIModelPrefixes = []string{
	"gpt-",
	"o1",
	"o3",
	"o4",
	"text-embedding",
	"davinci",
	"curie",
	"babbage",
	"ada",
	"code-",
}

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config selects the tokenizer.
type Config struct {
	Model string
}

// Estimate is the size of one prompt.
type Estimate struct {
	Encoding   string
	Tokens     int
	Characters int
}

// String renders the estimate for status output.
func (estimate Estimate) String() string {
	return fmt.Sprintf(estimateFormat, estimate.Tokens, estimate.Characters, estimate.Encoding)
}

// NewCounter returns a tiktoken counter for cfg.Model and the name of the encoding in use.
// OpenAI models use their own encoding when tiktoken knows it; every other model is
// approximated with cl100k_base.
func NewCounter(cfg Config) (Counter, string, error) {
	model := NormalizeModel(cfg.Model)
	if IsOpenAIModel(model) {
		if encoding, err := tiktoken.EncodingForModel(model); err == nil && encoding != nil {
			return encodingCounter{encoding: encoding, name: model}, model, nil
		}
	}
	encoding, err := tiktoken.GetEncoding(defaultEncodingName)
	if err != nil {
		return nil, "", fmt.Errorf(errorInitializeFormat, defaultEncodingName, err)
	}
	return encodingCounter{encoding: encoding, name: defaultEncodingName}, defaultEncodingName, nil
}

// NormalizeModel trims and lower-cases model, substituting DefaultModel for blank input.
func NormalizeModel(model string) string {
	trimmed := strings.ToLower(strings.TrimSpace(model))
	if trimmed == "" {
		return DefaultModel
	}
	return trimmed
}

// IsOpenAIModel reports whether model belongs to a family tiktoken may know natively.
func IsOpenAIModel(model string) bool {
	for _, prefix := range openAIModelPrefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

// EstimatePrompt counts the tokens and characters of prompt.
func EstimatePrompt(counter Counter, prompt string) (Estimate, error) {
	if counter == nil {
		return Estimate{}, errors.New("nil tokenizer counter")
	}
	tokens, err := counter.CountString(prompt)
	if err != nil {
		return Estimate{}, err
	}
	return Estimate{
		Encoding:   counter.Name(),
		Tokens:     tokens,
		Characters: utf8.RuneCountInString(prompt),
	}, nil
}

type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter encodingCounter) Name() string {
	return counter.name
}

func (counter encodingCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errNilEncoder
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}
