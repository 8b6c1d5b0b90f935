package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/modgraph"
	eventbus "github.com/hanpama/modgraph/internal/eventbus"
	events "github.com/hanpama/modgraph/internal/events"
	reqid "github.com/hanpama/modgraph/internal/reqid"
)

func newTestHandler(t *testing.T, hello modgraph.ResolverFunc, opts ...Option) *Handler {
	t.Helper()
	m := modgraph.Module{Schema: `type Query { hello: String root: String }`}
	if hello != nil {
		m.Resolvers = modgraph.Resolvers{"Query": modgraph.Resolvers{"hello": hello}}
	}
	exec, err := modgraph.NewExecutor(m)
	require.NoError(t, err)
	h, err := New(exec, opts...)
	require.NoError(t, err)
	return h
}

func world(context.Context, modgraph.ResolveParams) (any, error) { return "world", nil }

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestNewRequiresExecutor(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler(t, world)
	w := post(t, h, `{"query":"{ hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"data": map[string]any{"hello": "world"}}, decode(t, w))
}

func TestGetQueryWithVariables(t *testing.T) {
	h := newTestHandler(t, func(_ context.Context, p modgraph.ResolveParams) (any, error) {
		return "world", nil
	})
	q := url.Values{}
	q.Set("query", "query Q($skip: Boolean!) { hello @skip(if: $skip) root }")
	q.Set("variables", `{"skip": true}`)
	req := httptest.NewRequest("GET", "/?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"data": map[string]any{"root": nil}}, decode(t, w))
}

func TestBatch(t *testing.T) {
	h := newTestHandler(t, world)
	w := post(t, h, `[{"query":"{ hello }"},{"query":"{ root }"}]`)
	want := []any{
		map[string]any{"data": map[string]any{"hello": "world"}},
		map[string]any{"data": map[string]any{"root": nil}},
	}
	if diff := cmp.Diff(want, decode(t, w)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestContextArgIsRequest(t *testing.T) {
	exec, err := modgraph.NewExecutor(modgraph.Module{
		Schema: `type Query { user: String }`,
		Resolvers: modgraph.Resolvers{"Query": modgraph.Resolvers{
			"user": modgraph.ResolverFunc(func(_ context.Context, p modgraph.ResolveParams) (any, error) {
				return p.Context["user"], nil
			}),
		}},
		Context: func(arg any) (modgraph.ContextValue, error) {
			r := arg.(*http.Request)
			return modgraph.ContextValue{"user": r.Header.Get("X-User")}, nil
		},
	})
	require.NoError(t, err)
	h, err := New(exec)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ user }"}`))
	req.Header.Set("X-User", "ann")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, map[string]any{"data": map[string]any{"user": "ann"}}, decode(t, w))
}

func TestRootValue(t *testing.T) {
	h := newTestHandler(t, nil, WithRootValue(map[string]any{"hello": "fixture", "root": "r"}))
	w := post(t, h, `{"query":"{ hello root }"}`)
	require.Equal(t, map[string]any{"data": map[string]any{"hello": "fixture", "root": "r"}}, decode(t, w))
}

func TestErrors(t *testing.T) {
	h := newTestHandler(t, world)

	w := post(t, h, `{"query":"{ hello "}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w).(map[string]any)
	require.Nil(t, body["data"])
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].(map[string]any), "locations")

	w = post(t, h, `{"query":"{ nope }"}`)
	body = decode(t, w).(map[string]any)
	require.Len(t, body["errors"], 1)

	w = post(t, h, `{"query":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = post(t, h, `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest("PUT", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, world, WithCORS("*"))

	// simple request
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	// preflight
	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	if pw.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", pw.Code)
	}
	if pw.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight missing CORS header")
	}
	if pw.Header().Get("Access-Control-Allow-Headers") != "X-Test" {
		t.Fatalf("preflight missing allow headers")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, world, WithMaxBodyBytes(10))
	w := post(t, h, `{"query":"1234567890"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	var captured string
	h := newTestHandler(t, func(ctx context.Context, _ modgraph.ResolveParams) (any, error) {
		captured, _ = reqid.FromContext(ctx)
		return "world", nil
	})

	w := post(t, h, `{"query":"{ hello }"}`)
	require.NotEmpty(t, captured)
	require.Equal(t, captured, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"query":"{ hello }"}`))
	req.Header.Set(RequestIDHeader, "from-client")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, "from-client", captured)
	require.Equal(t, "from-client", rec.Header().Get(RequestIDHeader))
}

func TestGraphiQL(t *testing.T) {
	h := newTestHandler(t, world)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/html"))
	require.Contains(t, w.Body.String(), "graphiql")

	h = newTestHandler(t, world, WithGraphiQL(false))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishesHTTPEvents(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var statuses, operations []int
	var ops []string
	var started, finished []string
	eventbus.Subscribe(func(_ context.Context, e events.HTTPStart) { started = append(started, e.RequestID) })
	eventbus.Subscribe(func(_ context.Context, e events.HTTPFinish) {
		statuses = append(statuses, e.Status)
		operations = append(operations, e.Operations)
		finished = append(finished, e.RequestID)
	})
	eventbus.Subscribe(func(_ context.Context, e events.GraphQLFinish) { ops = append(ops, e.OperationType) })

	h := newTestHandler(t, world)
	post(t, h, `{"query":"{ hello }"}`)
	post(t, h, `{"query":""}`)
	post(t, h, `[{"query":"{ hello }"},{"query":"{ root }"}]`)

	require.Equal(t, []int{http.StatusOK, http.StatusBadRequest, http.StatusOK}, statuses)
	require.Equal(t, []int{1, 0, 2}, operations)
	require.Equal(t, []string{"query", "query", "query"}, ops)
	require.Len(t, started, 3)
	require.Equal(t, started, finished)
}

type forbidden struct{}

func (forbidden) Error() string              { return "forbidden" }
func (forbidden) Extensions() map[string]any { return map[string]any{"code": "FORBIDDEN"} }

func TestExecutionErrorsAreLocated(t *testing.T) {
	h := newTestHandler(t, func(context.Context, modgraph.ResolveParams) (any, error) {
		return nil, forbidden{}
	})
	w := post(t, h, `{"query":"{ root hello }"}`)
	require.Equal(t, http.StatusOK, w.Code)

	want := map[string]any{
		"data": map[string]any{"root": nil, "hello": nil},
		"errors": []any{map[string]any{
			"message":    "forbidden",
			"locations":  []any{map[string]any{"line": float64(1), "column": float64(8)}},
			"path":       []any{"hello"},
			"extensions": map[string]any{"code": "FORBIDDEN"},
		}},
	}
	if diff := cmp.Diff(want, decode(t, w)); diff != "" {
		t.Fatalf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestUnsupportedContentType(t *testing.T) {
	h := newTestHandler(t, world)
	req := httptest.NewRequest("POST", "/", strings.NewReader(`query=%7B+hello+%7D`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	body := decode(t, w).(map[string]any)
	require.Nil(t, body["data"])
	require.Len(t, body["errors"], 1)
}
