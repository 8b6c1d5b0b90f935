package executor

import (
	"errors"

	language "github.com/hanpama/modgraph/internal/language"
)

// Location is a 1-based line and column in the operation document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is one entry of a result's errors list. Field errors carry
// the locations of the selections that produced them and their response
// path; errors raised while preparing the operation carry neither.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExtendedError is implemented by resolver errors that want extra entries in
// the "extensions" member of their GraphQL error.
type ExtendedError interface {
	error
	Extensions() map[string]any
}

// ExecutionResult is the outcome of one execution. Data is nil when the
// operation could not start or a Non-Null violation reached the root.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// fieldError locates err at the given selections and response path.
func fieldError(err error, fields []*language.Field, path Path) GraphQLError {
	e := GraphQLError{Message: err.Error(), Locations: fieldLocations(fields), Path: path}
	var ext ExtendedError
	if errors.As(err, &ext) {
		e.Extensions = ext.Extensions()
	}
	return e
}

func fieldLocations(fields []*language.Field) []Location {
	var locs []Location
	for _, f := range fields {
		if f.Position != nil {
			locs = append(locs, Location{Line: f.Position.Line, Column: f.Position.Column})
		}
	}
	return locs
}
