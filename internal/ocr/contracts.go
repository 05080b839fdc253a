// Package ocr drives an asynchronous text-detection job from submission
// through polling to paginated result retrieval.
package ocr

import (
	"context"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
)

// DocumentLocation identifies a stored document by bucket and key.
type DocumentLocation struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// JobState is one status observation for a running job.
type JobState struct {
	Status        constants.OCRJobStatus
	StatusMessage string
}

// ResultPage is one page of detection results. Lines are line-level text
// blocks in the order the service returned them; that order is taken as
// reading order, no re-sorting happens anywhere downstream.
type ResultPage struct {
	Lines         []string
	NextPageToken string
}

// TextDetector is the boundary contract for the external detection service.
type TextDetector interface {
	// Submit starts a detection job and returns its opaque job ID.
	Submit(ctx context.Context, loc DocumentLocation) (string, error)
	// Poll reports the job's current lifecycle state.
	Poll(ctx context.Context, jobID string) (JobState, error)
	// FetchPage retrieves one result page; pageToken is empty for the first
	// page and the returned NextPageToken is empty on the last.
	FetchPage(ctx context.Context, jobID string, pageToken string, maxResults int32) (ResultPage, error)
}
