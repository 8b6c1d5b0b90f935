package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hanpama/modgraph"
	language "github.com/hanpama/modgraph/internal/language"
)

// requestFailure reports an error that stopped an operation before
// execution as a result without data. Located parser errors keep their
// locations and extensions.
func requestFailure(err error) *modgraph.Result {
	var list language.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		out := make([]modgraph.Error, len(list))
		for i, e := range list {
			out[i] = fromLanguageError(e)
		}
		return &modgraph.Result{Errors: out}
	}
	var located *language.Error
	if errors.As(err, &located) {
		return &modgraph.Result{Errors: []modgraph.Error{fromLanguageError(located)}}
	}
	return &modgraph.Result{Errors: []modgraph.Error{{Message: err.Error()}}}
}

func fromLanguageError(e *language.Error) modgraph.Error {
	out := modgraph.Error{Message: e.Message, Extensions: e.Extensions}
	for _, loc := range e.Locations {
		out.Locations = append(out.Locations, modgraph.Location{Line: loc.Line, Column: loc.Column})
	}
	return out
}

func (h *Handler) write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.opt.Pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
