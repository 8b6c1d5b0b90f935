package server

import (
	"context"
	_ "embed"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/hanpama/modgraph"
	eventbus "github.com/hanpama/modgraph/internal/eventbus"
	events "github.com/hanpama/modgraph/internal/events"
	reqid "github.com/hanpama/modgraph/internal/reqid"
)

//go:embed graphiql.html
var graphiqlPage []byte

// RequestIDHeader carries the request id. A client supplied value is kept.
const RequestIDHeader = "X-Request-Id"

// Handler serves a composed modgraph schema over HTTP: GET and POST
// requests, JSON batches and an optional GraphiQL page. The *http.Request is
// the context argument of every operation, so module context functions can
// read headers.
type Handler struct {
	exec *modgraph.Executor
	opt  Options
}

type Options struct {
	// Timeout applies when the incoming request context has no deadline.
	// 0 disables it.
	Timeout time.Duration

	// Pretty indents JSON responses.
	Pretty bool

	// MaxBodyBytes limits the request body. 0 means unlimited.
	MaxBodyBytes int64

	// AllowedOrigins enables CORS for the listed origins; "*" allows any.
	AllowedOrigins []string

	// RootValue is the root value of every operation.
	RootValue any

	// GraphiQL serves the in-browser IDE to GET requests accepting HTML.
	GraphiQL bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option  { return func(o *Options) { o.AllowedOrigins = origins } }
func WithRootValue(v any) Option         { return func(o *Options) { o.RootValue = v } }
func WithGraphiQL(enable bool) Option    { return func(o *Options) { o.GraphiQL = enable } }

// New returns a handler serving exec.
func New(exec *modgraph.Executor, opts ...Option) (*Handler, error) {
	if exec == nil {
		return nil, errors.New("server: executor is required")
	}
	op := Options{Timeout: 10 * time.Second, GraphiQL: true}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{exec: exec, opt: op}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}
	ctx, rid := requestID(ctx, r)
	w.Header().Set(RequestIDHeader, rid)
	r = r.WithContext(ctx)

	status, operations := http.StatusOK, 0
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r, RequestID: rid})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{
			Request:    r,
			RequestID:  rid,
			Status:     status,
			Operations: operations,
			Duration:   time.Since(start),
		})
	}()

	h.allowOrigin(w, r)
	switch {
	case r.Method == http.MethodOptions:
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	case r.Method != http.MethodPost && r.Method != http.MethodGet:
		status = http.StatusMethodNotAllowed
		h.write(w, status, requestFailure(errors.New("method not allowed")))
		return
	case r.Method == http.MethodGet && h.opt.GraphiQL && r.URL.Query().Get("query") == "" && acceptsHTML(r.Header.Get("Accept")):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(graphiqlPage)
		return
	}

	reqs, batched, err := decodeRequest(r, h.opt.MaxBodyBytes)
	if err != nil {
		status = err.status
		h.write(w, status, requestFailure(err))
		return
	}
	operations = len(reqs)

	results := make([]*modgraph.Result, len(reqs))
	for i, req := range reqs {
		results[i] = h.run(ctx, r, req)
	}
	if batched {
		h.write(w, status, results)
		return
	}
	h.write(w, status, results[0])
}

// run executes one operation. Errors raised before execution, such as a
// syntax error or a failing context function, become a result without data.
func (h *Handler) run(ctx context.Context, r *http.Request, req Request) *modgraph.Result {
	result, err := h.exec.Run(ctx, req.Query, modgraph.Options{
		ContextArg:     r,
		RootValue:      h.opt.RootValue,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
	})
	if err != nil {
		return requestFailure(err)
	}
	return result
}

func requestID(ctx context.Context, r *http.Request) (context.Context, string) {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		return reqid.WithID(ctx, id), id
	}
	return reqid.NewContext(ctx)
}

// allowOrigin sets CORS headers when the request's origin is allowed.
func (h *Handler) allowOrigin(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	allowed := h.opt.AllowedOrigins
	if origin == "" || len(allowed) == 0 {
		return
	}
	switch {
	case slices.Contains(allowed, "*"):
		w.Header().Set("Access-Control-Allow-Origin", "*")
	case slices.Contains(allowed, origin):
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	default:
		return
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func acceptsHTML(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, "text/html") || part == "*/*" {
			return true
		}
	}
	return false
}
