package background

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/phishguard/internal/model"
)

// Request actions.
const (
	ActionScanURL   = "scanUrl"
	ActionScanImage = "scanImage"
	ActionGetStats  = "getStats"
)

var (
	// ErrUnknownAction is returned by Dispatch for unsupported actions.
	ErrUnknownAction = errors.New("unknown action")

	// ErrMissingURL is returned when a scan request has no target.
	ErrMissingURL = errors.New("request has no URL")
)

// Request is a message from the content monitor or the popup.
type Request struct {
	Action   string `json:"action"`
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Reply answers a Request. Exactly one field is set.
type Reply struct {
	Result *model.ScanResult `json:"result,omitempty"`
	Stats  *model.Counters   `json:"stats,omitempty"`
}

// Dispatch answers a request. It returns only after the scan resolved, so
// the caller can keep its reply channel open until then.
func (c *Coordinator) Dispatch(ctx context.Context, req Request) (Reply, error) {
	switch req.Action {
	case ActionScanURL:
		if req.URL == "" {
			return Reply{}, ErrMissingURL
		}
		r := c.scanner.ScanURL(ctx, req.URL)
		return Reply{Result: &r}, nil
	case ActionScanImage:
		if req.ImageURL == "" {
			return Reply{}, ErrMissingURL
		}
		r := c.scanner.ScanImage(ctx, req.ImageURL)
		return Reply{Result: &r}, nil
	case ActionGetStats:
		counters, err := c.state.Counters(ctx)
		if err != nil {
			return Reply{}, fmt.Errorf("failed to read counters: %w", err)
		}
		return Reply{Stats: &counters}, nil
	default:
		return Reply{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}
