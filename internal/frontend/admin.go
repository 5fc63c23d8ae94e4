package frontend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nao1215/phishguard/internal/model"
)

// AdminClient is the subset of the scan client used by the admin view.
type AdminClient interface {
	ListIPs(ctx context.Context) ([]model.IPEntry, error)
	UnblockIP(ctx context.Context, ip string) error
}

// IPRow is one rendered entry of the IP table.
type IPRow struct {
	Entry model.IPEntry `json:"entry"`

	// State is "blocked" or "active" at load time.
	State string `json:"state"`

	// CanUnblock is true for blocked entries.
	CanUnblock bool `json:"canUnblock"`
}

// AdminView shows the backend's IP reputation table. It never edits rows
// locally; every change is followed by a full reload.
type AdminView struct {
	client AdminClient
	now    func() time.Time

	mu   sync.Mutex
	rows []IPRow
}

// NewAdminView creates an AdminView.
func NewAdminView(client AdminClient) *AdminView {
	return &AdminView{client: client, now: time.Now}
}

// Load fetches the table and derives each row's state from blocked_until.
func (v *AdminView) Load(ctx context.Context) ([]IPRow, error) {
	entries, err := v.client.ListIPs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load IPs: %w", err)
	}

	now := v.now()
	rows := make([]IPRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, IPRow{
			Entry:      e,
			State:      e.State(now),
			CanUnblock: e.Blocked(now),
		})
	}

	v.mu.Lock()
	v.rows = rows
	v.mu.Unlock()
	return rows, nil
}

// Unblock sends one unblock request for ip and then reloads the table once,
// whether or not the request succeeded.
func (v *AdminView) Unblock(ctx context.Context, ip string) ([]IPRow, error) {
	unblockErr := v.client.UnblockIP(ctx, ip)
	rows, loadErr := v.Load(ctx)
	return rows, errors.Join(unblockErr, loadErr)
}

// Rows returns the rows of the last successful load.
func (v *AdminView) Rows() []IPRow {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]IPRow(nil), v.rows...)
}
