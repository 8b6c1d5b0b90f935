package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
)

// Request is one GraphQL operation as sent over HTTP.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

// requestError rejects a request before any operation runs.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(message string) *requestError {
	return &requestError{status: http.StatusBadRequest, message: message}
}

// decodeRequest reads the operations of r. GET carries one operation in the
// URL; a POST body holds one JSON object or a non-empty array of them.
func decodeRequest(r *http.Request, maxBody int64) ([]Request, bool, *requestError) {
	if r.Method == http.MethodGet {
		req, err := fromQueryString(r)
		if err != nil {
			return nil, false, err
		}
		return []Request{req}, false, nil
	}

	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			return nil, false, &requestError{status: http.StatusUnsupportedMediaType, message: "unsupported Content-Type"}
		}
	}
	body, err := readBody(r, maxBody)
	if err != nil {
		return nil, false, err
	}

	if len(body) > 0 && body[0] == '[' {
		var batch []Request
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, false, badRequest("invalid JSON")
		}
		if len(batch) == 0 {
			return nil, false, badRequest("empty batch")
		}
		return batch, true, nil
	}
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, false, badRequest("invalid JSON")
	}
	if req.Query == "" {
		return nil, false, badRequest("missing 'query'")
	}
	return []Request{req}, false, nil
}

func fromQueryString(r *http.Request) (Request, *requestError) {
	q := r.URL.Query()
	req := Request{Query: q.Get("query"), OperationName: q.Get("operationName")}
	if req.Query == "" {
		return req, badRequest("missing 'query'")
	}
	if v := q.Get("variables"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
			return req, badRequest("invalid 'variables' JSON")
		}
	}
	return req, nil
}

// readBody reads at most maxBody bytes; one byte more rejects the request.
func readBody(r *http.Request, maxBody int64) ([]byte, *requestError) {
	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, badRequest("failed to read body")
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return nil, &requestError{status: http.StatusRequestEntityTooLarge, message: "body too large"}
	}
	return body, nil
}
