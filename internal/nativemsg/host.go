package nativemsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/phishguard/internal/background"
	"github.com/nao1215/phishguard/internal/event"
	"github.com/nao1215/phishguard/internal/model"
	"github.com/nao1215/phishguard/internal/ui"
)

// DefaultConcurrency is the number of messages handled at once.
const DefaultConcurrency = 8

// ErrUnknownEvent is reported for events with an unknown name.
var ErrUnknownEvent = errors.New("unknown event")

// Handler processes requests and events. background.Coordinator implements it.
type Handler interface {
	Install(ctx context.Context) error
	Dispatch(ctx context.Context, req background.Request) (background.Reply, error)
	Submit(ctx context.Context, ev model.Event) *event.Future
	ForgetTab(tabID int)
}

// Host reads messages from the browser and writes replies and commands.
type Host struct {
	in          io.Reader
	out         io.Writer
	logger      *slog.Logger
	concurrency int

	wmu sync.Mutex
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. Native hosts must never log to stdout.
func WithLogger(l *slog.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithConcurrency limits how many messages are handled at once.
func WithConcurrency(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.concurrency = n
		}
	}
}

// NewHost creates a host reading from in and writing to out.
func NewHost(in io.Reader, out io.Writer, opts ...Option) *Host {
	h := &Host{
		in:          in,
		out:         out,
		logger:      slog.New(slog.DiscardHandler),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve handles messages until the browser closes stdin or ctx ends, then
// waits for in-flight messages to finish. A clean close returns nil.
//
// A pending read only notices ctx when the input is an io.Closer: the input
// is closed once ctx ends. Other readers stop at the next frame or at EOF.
func (h *Host) Serve(ctx context.Context, handler Handler) error {
	if c, ok := h.in.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			_ = c.Close() //nolint:errcheck // unblocks the pending read
		})
		defer stop()
	}

	var g errgroup.Group
	g.SetLimit(h.concurrency)

	var readErr error
	for ctx.Err() == nil {
		data, err := ReadMessage(h.in)
		if errors.Is(err, io.EOF) || (err != nil && ctx.Err() != nil) {
			break
		}
		if errors.Is(err, ErrEmptyMessage) {
			h.logger.Debug("ignoring empty message")
			continue
		}
		if err != nil {
			readErr = fmt.Errorf("failed to read message: %w", err)
			break
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("ignoring malformed message", "error", err)
			continue
		}

		g.Go(func() error {
			h.handle(ctx, handler, msg)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // handlers never return errors
	return readErr
}

// handle processes one message and writes its reply.
func (h *Host) handle(ctx context.Context, handler Handler, msg Inbound) {
	reply := Outbound{Type: TypeReply, ID: msg.ID}

	switch {
	case msg.Event != "":
		h.handleEvent(ctx, handler, msg, &reply)
	case msg.Action == ActionInstall:
		if err := handler.Install(ctx); err != nil {
			reply.Error = err.Error()
		}
	default:
		r, err := handler.Dispatch(ctx, background.Request{
			Action:   msg.Action,
			URL:      msg.URL,
			ImageURL: msg.ImageURL,
		})
		if err != nil {
			reply.Error = err.Error()
		}
		reply.Result = r.Result
		reply.Stats = r.Stats
	}

	if msg.ID == "" {
		return
	}
	if err := h.send(reply); err != nil {
		h.logger.Warn("failed to send reply", "id", msg.ID, "error", err)
	}
}

func (h *Host) handleEvent(ctx context.Context, handler Handler, msg Inbound, reply *Outbound) {
	if msg.Event == EventTabRemoved {
		var p tabRemoved
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			reply.Error = fmt.Sprintf("invalid payload: %v", err)
			return
		}
		handler.ForgetTab(p.TabID)
		return
	}

	ev, err := decodeEvent(msg.Event, msg.Payload)
	if err != nil {
		reply.Error = err.Error()
		return
	}

	result, err := handler.Submit(ctx, ev).Wait(ctx)
	switch {
	case errors.Is(err, event.ErrSkipped):
		reply.Skipped = true
	case err != nil:
		reply.Error = err.Error()
	default:
		reply.Result = &result
	}
}

// decodeEvent builds the domain event named name from its JSON payload.
// Only background events are accepted; form and link events belong to the
// page's content monitor and are unknown here.
func decodeEvent(name string, payload json.RawMessage) (model.Event, error) {
	var ev model.Event
	switch name {
	case model.EventNavigationCompleted:
		var e model.NavigationCompleted
		if err := unmarshalPayload(payload, &e); err != nil {
			return nil, err
		}
		ev = e
	case model.EventContextMenuClicked:
		var e model.ContextMenuClicked
		if err := unmarshalPayload(payload, &e); err != nil {
			return nil, err
		}
		ev = e
	case model.EventDownloadCreated:
		var e model.DownloadCreated
		if err := unmarshalPayload(payload, &e); err != nil {
			return nil, err
		}
		ev = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return ev, nil
}

func unmarshalPayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return errors.New("invalid payload: missing")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// send writes one message. Concurrent handlers share stdout, so frames
// must never interleave.
func (h *Host) send(msg Outbound) error {
	h.wmu.Lock()
	defer h.wmu.Unlock()
	return WriteMessage(h.out, msg)
}

// SetBadge implements background.Badge.
func (h *Host) SetBadge(_ context.Context, p ui.Patch) error {
	return h.send(Outbound{Type: TypeSetBadge, Badge: &p})
}

// Notify implements background.Notifier.
func (h *Host) Notify(_ context.Context, n background.Notification) error {
	return h.send(Outbound{Type: TypeNotify, Notification: &n})
}

// Cancel implements background.Downloads. The extension performs the
// cancel; the host does not wait for an acknowledgement.
func (h *Host) Cancel(_ context.Context, id int) error {
	return h.send(Outbound{Type: TypeCancelDownload, DownloadID: &id})
}

var (
	_ background.Badge     = (*Host)(nil)
	_ background.Notifier  = (*Host)(nil)
	_ background.Downloads = (*Host)(nil)
	_ Handler              = (*background.Coordinator)(nil)
)
