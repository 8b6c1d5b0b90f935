package events

import "time"

// GraphQLStart is published once an operation has been parsed, before it
// executes. OperationType is empty when the document names no matching
// operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is published when the operation is done: after Run
// returns its result, after a subscription ends, or when either panics.
// Errors holds the result errors, or the error that ended a subscription.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// SubscriptionResult is published for every result a subscription
// delivers, before the callback sees it. Sequence counts from zero.
type SubscriptionResult struct {
	OperationName string
	Sequence      int
	Errors        []error
}
