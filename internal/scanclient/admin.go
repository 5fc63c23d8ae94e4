package scanclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"github.com/nao1215/phishguard/internal/model"
)

// ipRecord is one value of the /admin/ips mapping.
type ipRecord struct {
	Attempts     int     `json:"attempts"`
	BlockedUntil float64 `json:"blocked_until"`
	LastSeen     float64 `json:"last_seen"`
}

// ListIPs fetches the backend's IP reputation table sorted by address.
func (c *Client) ListIPs(ctx context.Context) ([]model.IPEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpointIPs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list IPs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to list IPs: %w %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var table map[string]ipRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, c.maxBody)).Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to list IPs: %w: %w", ErrMalformedResponse, err)
	}

	entries := make([]model.IPEntry, 0, len(table))
	for ip, rec := range table {
		entries = append(entries, model.IPEntry{
			IP:           ip,
			Attempts:     rec.Attempts,
			BlockedUntil: rec.BlockedUntil,
			LastSeen:     rec.LastSeen,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].IP < entries[j].IP })
	return entries, nil
}

// UnblockIP asks the backend to lift the block on ip. Success is implied
// by a 2xx status; the body is ignored.
func (c *Client) UnblockIP(ctx context.Context, ip string) error {
	if ip == "" {
		return ErrEmptyIP
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+endpointUnblock+url.PathEscape(ip), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to unblock %s: %w", ip, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("failed to unblock %s: %w %d", ip, ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}
