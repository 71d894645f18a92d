package transform

import (
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// SyntaxError reports source the obfuscation engine could not parse.
type SyntaxError struct {
	Line   int
	Column int
	Text   string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return "syntax error: " + e.Text
	}
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Column, e.Text)
}

// ESBuildOptions tunes the esbuild backed obfuscator.
type ESBuildOptions struct {
	// WrapIIFE wraps the program in a function expression so top-level names
	// can be mangled too. Globals declared by the input stop being global.
	WrapIIFE bool
}

// ESBuild obfuscates JavaScript with esbuild's minifier: identifiers are
// mangled, syntax is compressed and all whitespace is dropped.
type ESBuild struct {
	opts ESBuildOptions
}

// NewESBuild creates an ESBuild obfuscator.
func NewESBuild(opts ESBuildOptions) *ESBuild {
	return &ESBuild{opts: opts}
}

// Obfuscate implements Obfuscator.
func (e *ESBuild) Obfuscate(source string) (string, error) {
	options := api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		MinifyWhitespace:  true,
		Charset:           api.CharsetASCII,
		LegalComments:     api.LegalCommentsNone,
		TreeShaking:       api.TreeShakingFalse,
	}
	if e.opts.WrapIIFE {
		options.Format = api.FormatIIFE
	}

	result := api.Transform(source, options)
	if len(result.Errors) > 0 {
		msg := result.Errors[0]
		serr := &SyntaxError{Text: msg.Text}
		if msg.Location != nil {
			serr.Line = msg.Location.Line
			serr.Column = msg.Location.Column
		}
		return "", serr
	}

	return strings.TrimRight(string(result.Code), "\n"), nil
}
