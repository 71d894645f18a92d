// Package transform defines the source transformations jsob can apply.
package transform

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrUnknownMethod is returned when a method name is not recognized.
var ErrUnknownMethod = errors.New("unknown method")

// Method identifies a transformation kind.
type Method string

const (
	MethodMinify    Method = "minify"
	MethodObfuscate Method = "obfuscate"
)

// legacyObfuscate is the spelling persisted by earlier versions of the tool.
const legacyObfuscate = "obfuscator"

// Methods returns every supported method in display order.
func Methods() []Method {
	return []Method{MethodMinify, MethodObfuscate}
}

// ParseMethod converts a user or storage supplied name to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(MethodMinify):
		return MethodMinify, nil
	case string(MethodObfuscate), legacyObfuscate:
		return MethodObfuscate, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMethod, s)
	}
}

// Valid reports whether m is one of the supported methods.
func (m Method) Valid() bool {
	return m == MethodMinify || m == MethodObfuscate
}

func (m Method) String() string {
	return string(m)
}

// Next returns the method that follows m in display order, wrapping around.
func (m Method) Next() Method {
	if m == MethodMinify {
		return MethodObfuscate
	}
	return MethodMinify
}

// Obfuscator is an external engine that rewrites source into an equivalent,
// harder to read form. Implementations may randomize output between calls and
// fail on source they cannot parse.
type Obfuscator interface {
	Obfuscate(source string) (string, error)
}

// Service applies a Method to source text.
type Service struct {
	obfuscator Obfuscator
}

// New creates a Service that delegates obfuscation to o.
func New(o Obfuscator) *Service {
	return &Service{obfuscator: o}
}

// Transform applies method to source.
func (s *Service) Transform(source string, method Method) (string, error) {
	switch method {
	case MethodMinify:
		return Minify(source), nil
	case MethodObfuscate:
		if s.obfuscator == nil {
			return "", errors.New("no obfuscator configured")
		}
		return s.obfuscator.Obfuscate(source)
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownMethod, method)
	}
}

// Minify deletes every whitespace character from source, so adjacent tokens
// become contiguous.
func Minify(source string) string {
	return strings.Map(func(r rune) rune {
		if IsSpace(r) {
			return -1
		}
		return r
	}, source)
}

// IsSpace matches the JavaScript \s class: Unicode white space plus the BOM,
// without NEL (U+0085), which JavaScript does not treat as white space.
func IsSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}
