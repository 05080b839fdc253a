// Package async runs contract reviews on a bounded worker pool behind the
// trigger endpoint.
package async

import (
	"context"
	"time"

	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
)

// Job is the smallest useful unit. Extend as needed later (priority, retry, etc).
type Job struct {
	Request     ingest.Request
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
