package store

import (
	"context"
	"fmt"

	"github.com/nao1215/phishguard/internal/model"
)

// Install writes the install-time defaults: both toggles on and both
// counters at zero. Running it again resets an existing installation.
func (s *DB) Install(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	def := model.DefaultSettings()
	if _, err := tx.ExecContext(ctx,
		`UPDATE settings SET auto_scan = ?, show_notifications = ? WHERE id = 1`,
		def.AutoScan, def.ShowNotifications); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE counters SET pages_scanned = 0, threats_blocked = 0 WHERE id = 1`); err != nil {
		return fmt.Errorf("failed to reset counters: %w", err)
	}
	return tx.Commit()
}

// Settings returns the current toggles.
func (s *DB) Settings(ctx context.Context) (model.Settings, error) {
	var st model.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT auto_scan, show_notifications FROM settings WHERE id = 1`,
	).Scan(&st.AutoScan, &st.ShowNotifications)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return st, nil
}

// SaveSettings replaces both toggles.
func (s *DB) SaveSettings(ctx context.Context, st model.Settings) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE settings SET auto_scan = ?, show_notifications = ? WHERE id = 1`,
		st.AutoScan, st.ShowNotifications)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// Counters returns the running totals.
func (s *DB) Counters(ctx context.Context) (model.Counters, error) {
	var c model.Counters
	err := s.db.QueryRowContext(ctx,
		`SELECT pages_scanned, threats_blocked FROM counters WHERE id = 1`,
	).Scan(&c.PagesScanned, &c.ThreatsBlocked)
	if err != nil {
		return model.Counters{}, fmt.Errorf("failed to read counters: %w", err)
	}
	return c, nil
}

// Increment records one completed scan and returns the new totals.
// pagesScanned always grows by one; threatsBlocked grows only for phishing.
// Both happen in one UPDATE so concurrent scans cannot lose an increment.
// Error verdicts are not scans and leave the counters unchanged.
func (s *DB) Increment(ctx context.Context, status model.Status) (model.Counters, error) {
	if status == model.StatusError {
		return s.Counters(ctx)
	}

	threat := 0
	if status == model.StatusPhishing {
		threat = 1
	}

	var c model.Counters
	err := s.db.QueryRowContext(ctx,
		`UPDATE counters
		 SET pages_scanned = pages_scanned + 1, threats_blocked = threats_blocked + ?
		 WHERE id = 1
		 RETURNING pages_scanned, threats_blocked`,
		threat,
	).Scan(&c.PagesScanned, &c.ThreatsBlocked)
	if err != nil {
		return model.Counters{}, fmt.Errorf("failed to increment counters: %w", err)
	}
	return c, nil
}
