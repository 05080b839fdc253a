package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

type fakeDetector struct {
	submitErr error
	jobID     string
	states    []JobState
	stateIdx  int
	pollErr   error
	pages     []ResultPage
	pageIdx   int
	fetchErr  error
	polls     int
}

func (f *fakeDetector) Submit(context.Context, DocumentLocation) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.jobID, nil
}

func (f *fakeDetector) Poll(context.Context, string) (JobState, error) {
	if f.pollErr != nil {
		return JobState{}, f.pollErr
	}
	f.polls++
	s := f.states[f.stateIdx]
	if f.stateIdx < len(f.states)-1 {
		f.stateIdx++
	}
	return s, nil
}

func (f *fakeDetector) FetchPage(context.Context, string, string, int32) (ResultPage, error) {
	if f.fetchErr != nil {
		return ResultPage{}, f.fetchErr
	}
	p := f.pages[f.pageIdx]
	if f.pageIdx < len(f.pages)-1 {
		f.pageIdx++
	}
	return p, nil
}

func testConfig() Config {
	return Config{WaitTimeout: time.Second, PollInterval: time.Millisecond, MaxPageSize: 2}
}

func TestRunHappyPath(t *testing.T) {
	det := &fakeDetector{
		jobID: "job-1",
		states: []JobState{
			{Status: constants.OCRJobInProgress},
			{Status: constants.OCRJobInProgress},
			{Status: constants.OCRJobSucceeded},
		},
		pages: []ResultPage{
			{Lines: []string{"line one", "line two"}, NextPageToken: "t1"},
			{Lines: []string{"line three"}},
		},
	}

	text, sum, err := NewOrchestrator(det, testConfig(), nil).Run(context.Background(), DocumentLocation{Bucket: "b", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two\nline three", text)
	assert.Equal(t, "job-1", sum.JobID)
	assert.Equal(t, constants.OCRJobSucceeded, sum.Status)
	assert.Equal(t, 3, sum.LineCount)
	assert.Equal(t, 3, sum.Polls)
}

func TestRunPartialSuccessRetrieves(t *testing.T) {
	det := &fakeDetector{
		jobID:  "job-2",
		states: []JobState{{Status: constants.OCRJobPartialSuccess}},
		pages:  []ResultPage{{Lines: []string{"only line"}}},
	}

	text, sum, err := NewOrchestrator(det, testConfig(), nil).Run(context.Background(), DocumentLocation{})
	require.NoError(t, err)
	assert.Equal(t, "only line", text)
	assert.Equal(t, constants.OCRJobPartialSuccess, sum.Status)
}

func TestRunSubmissionError(t *testing.T) {
	det := &fakeDetector{submitErr: errors.New("boom")}
	_, _, err := NewOrchestrator(det, testConfig(), nil).Run(context.Background(), DocumentLocation{})
	assert.ErrorIs(t, err, common.ErrJobSubmission)
}

func TestRunJobFailed(t *testing.T) {
	det := &fakeDetector{
		jobID:  "job-3",
		states: []JobState{{Status: constants.OCRJobFailed, StatusMessage: "bad input document"}},
	}
	_, _, err := NewOrchestrator(det, testConfig(), nil).Run(context.Background(), DocumentLocation{})
	require.ErrorIs(t, err, common.ErrJobFailed)
	assert.Contains(t, err.Error(), "bad input document")
}

func TestRunTimeout(t *testing.T) {
	det := &fakeDetector{
		jobID:  "job-4",
		states: []JobState{{Status: constants.OCRJobInProgress}},
	}
	cfg := Config{WaitTimeout: 5 * time.Millisecond, PollInterval: time.Millisecond, MaxPageSize: 10}
	_, _, err := NewOrchestrator(det, cfg, nil).Run(context.Background(), DocumentLocation{})
	assert.ErrorIs(t, err, common.ErrJobTimeout)
}

func TestRunEmptyTextIsNotAnError(t *testing.T) {
	// Zero lines is the caller's explicit failure check, not this layer's.
	det := &fakeDetector{
		jobID:  "job-5",
		states: []JobState{{Status: constants.OCRJobSucceeded}},
		pages:  []ResultPage{{}},
	}
	text, sum, err := NewOrchestrator(det, testConfig(), nil).Run(context.Background(), DocumentLocation{})
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Zero(t, sum.LineCount)
}

func TestRunContextCancelledDuringWait(t *testing.T) {
	det := &fakeDetector{
		jobID:  "job-6",
		states: []JobState{{Status: constants.OCRJobInProgress}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := Config{WaitTimeout: time.Minute, PollInterval: time.Millisecond, MaxPageSize: 10}
	_, _, err := NewOrchestrator(det, cfg, nil).Run(ctx, DocumentLocation{})
	assert.ErrorIs(t, err, context.Canceled)
}
