package language

import (
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// Prelude is the built-in SDL LoadSchema loads before the given sources.
var Prelude = validator.Prelude

func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func ParseSchema(name, source string) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseSchemaSource parses one SDL source without validating it.
func ParseSchemaSource(src *Source) (*SchemaDocument, error) {
	doc, err := parser.ParseSchema(src)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ErrorAt builds a schema error located at pos.
func ErrorAt(pos *Position, format string, args ...any) *Error {
	return gqlerror.ErrorPosf(pos, format, args...)
}

// NewSource names an SDL fragment so that schema errors point back at it.
func NewSource(name, input string) *Source {
	return &Source{Name: name, Input: input}
}

// LoadSchema parses and validates SDL sources on top of the built-in prelude.
// Type extensions are folded into their base definitions.
func LoadSchema(sources ...*Source) (*Schema, error) {
	s, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, err
	}
	return s, nil
}
