package events

import (
	"net/http"
	"time"
)

// HTTPStart is published by the server before it decodes a request. The
// request's context already carries RequestID.
type HTTPStart struct {
	Request   *http.Request
	RequestID string
}

// HTTPFinish is published once the response is written. Operations counts
// the GraphQL operations the request carried: 0 for rejected requests,
// preflights and the GraphiQL page, more than 1 for a batch.
type HTTPFinish struct {
	Request    *http.Request
	RequestID  string
	Status     int
	Operations int
	Duration   time.Duration
}
