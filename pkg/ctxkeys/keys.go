// Package ctxkeys holds the context keys shared by the HTTP layer and the
// evaluation engine so that request-scoped identifiers can be attached to
// logs without every caller threading them through explicit parameters.
package ctxkeys

type key string

const (
	TraceID      key = "trace_id"
	RequestID    key = "request_id"
	SubmissionID key = "submission_id"
)
