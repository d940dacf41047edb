package summarize

import (
	"errors"
	"fmt"
	"time"

	llmerrors "github.com/medopaw/ai-cli/internal/llm/errors"
)

// ErrUnparseableResponse is wrapped by RemoteError when a reply has no usable lines.
var ErrUnparseableResponse = errors.New("response contains no file summaries")

// TimeoutError reports a segment request that hit its own deadline.
type TimeoutError struct {
	Segment int
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("segment %d timed out after %s", e.Segment+1, e.Timeout)
}

// RemoteError reports a failed or unusable response for a segment.
type RemoteError struct {
	Segment int
	Err     error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.Segment+1, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// AggregateError is returned by Summarize when any segment fails. Err is the
// first failure, a *TimeoutError or *RemoteError; no partial results are kept.
type AggregateError struct {
	RunID   string
	Segment int
	Total   int
	Err     error
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("summarizing %d segments failed: %v", e.Total, e.Err)
}

func (e *AggregateError) Unwrap() error { return e.Err }

// UserMessage turns a pipeline failure into the text shown on the terminal.
func UserMessage(err error) string {
	var agg *AggregateError
	if !errors.As(err, &agg) {
		return err.Error()
	}

	var timeout *TimeoutError
	if errors.As(agg.Err, &timeout) {
		return fmt.Sprintf("The diff was split into %d segments and segment %d did not get a summary within %s. "+
			"Consider splitting the change into smaller commits.",
			agg.Total, timeout.Segment+1, timeout.Timeout)
	}

	cause := agg.Err
	var remote *RemoteError
	if errors.As(agg.Err, &remote) {
		cause = remote.Err
	}
	msg := fmt.Sprintf("The diff was split into %d segments and summarizing segment %d failed: %v.",
		agg.Total, agg.Segment+1, cause)

	var apiErr *llmerrors.APIError
	var cwErr *llmerrors.ContextWindowError
	switch {
	case errors.As(agg.Err, &cwErr):
		msg += " The segment is larger than the model's context window; lower pipeline.max_diff_length."
	case errors.As(agg.Err, &apiErr) && apiErr.Temporary():
		msg += " The service reported a temporary error, try again later."
	}
	return msg + " Consider splitting the change into smaller commits."
}
