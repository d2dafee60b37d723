// Package tokenizer splits an input line into whitespace-delimited words.
//
// There is no quoting or escaping: a quote or backslash is an ordinary
// character inside a token.
package tokenizer

import (
	"strings"

	"github.com/quocvuong92/dsh/internal/constants"
)

// Tokenizer splits lines on a fixed set of delimiter characters
type Tokenizer struct {
	// Delimiters lists the separator characters; empty means the default set
	Delimiters string
	// MaxTokens drops tokens beyond this count; 0 means unlimited
	MaxTokens int
}

// New returns a Tokenizer with the given delimiters and token cap
func New(delimiters string, maxTokens int) *Tokenizer {
	return &Tokenizer{Delimiters: delimiters, MaxTokens: maxTokens}
}

// Tokenize returns the non-empty tokens of line in order. Runs of delimiters
// collapse, so the result never holds an empty string. A blank line yields nil.
func (t *Tokenizer) Tokenize(line string) []string {
	delims := t.Delimiters
	if delims == "" {
		delims = constants.DefaultDelimiters
	}

	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(delims, r)
	})
	if len(tokens) == 0 {
		return nil
	}
	if t.MaxTokens > 0 && len(tokens) > t.MaxTokens {
		tokens = tokens[:t.MaxTokens]
	}
	return tokens
}

// Tokenize splits line on the default delimiters (newline, carriage return, space)
func Tokenize(line string) []string {
	var t Tokenizer
	return t.Tokenize(line)
}
