package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nao1215/phishguard/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of scans run at once when none is set.
const DefaultConcurrency = 4

// ScanFunc scans one target.
type ScanFunc func(ctx context.Context, target string) model.ScanResult

// Result is the verdict for one target of a batch.
type Result struct {
	Index  int              `json:"index"`
	Target string           `json:"target"`
	Result model.ScanResult `json:"result"`
}

// Processor scans lists of targets concurrently.
type Processor struct {
	scan        ScanFunc
	concurrency int
	logger      *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithConcurrency sets the maximum number of concurrent scans.
// Non-positive values keep the default.
func WithConcurrency(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a Processor that calls scan for every target.
func NewProcessor(scan ScanFunc, opts ...Option) *Processor {
	p := &Processor{
		scan:        scan,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run scans every target and returns the results in input order. A
// cancelled context stops targets that have not started; their slots keep
// a zero Result and ctx's error is returned.
func (p *Processor) Run(ctx context.Context, targets []string) ([]Result, error) {
	results := make([]Result, len(targets))
	err := p.RunWithCallback(ctx, targets, func(r Result) {
		results[r.Index] = r
	})
	return results, err
}

// RunWithCallback scans every target and calls fn as each scan completes.
// Calls to fn are serialized.
func (p *Processor) RunWithCallback(ctx context.Context, targets []string, fn func(Result)) error {
	p.logger.Info("starting batch scan",
		"total", len(targets),
		"concurrency", p.concurrency,
	)
	start := time.Now()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			result := p.scan(ctx, target)
			if result.IsError() {
				p.logger.Warn("scan failed", "target", target, "details", result.Details)
			}

			mu.Lock()
			defer mu.Unlock()
			fn(Result{Index: i, Target: target, Result: result})
			return nil
		})
	}

	err := g.Wait()
	p.logger.Info("batch scan complete",
		"total", len(targets),
		"elapsed", time.Since(start),
	)
	return err
}

// ReadTargets reads one target per line from r. Surrounding whitespace is
// trimmed; blank lines and # comments are skipped.
func ReadTargets(r io.Reader) ([]string, error) {
	var targets []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read targets: %w", err)
	}
	return targets, nil
}
