package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

const (
	DefaultInterval = 3000 * time.Millisecond
	DefaultTimeout  = 10 * time.Second

	maxBodyBytes = 4 << 10
)

type Config struct {
	// URL is the status endpoint, the server root.
	URL      string
	Interval time.Duration
	Timeout  time.Duration
	Payload  Payload
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Payload == (Payload{}) {
		c.Payload = DefaultPayload
	}
	return c
}

// Poller posts the status payload to the server on a fixed interval. At most
// one request is outstanding; ticks that fire meanwhile are skipped.
type Poller struct {
	client *http.Client
	cfg    Config
	clock  Clock

	mu        sync.RWMutex
	observers []Observer

	inFlight atomic.Bool
	seq      atomic.Uint64
	wg       sync.WaitGroup
}

type Option func(*Poller)

func WithClock(c Clock) Option {
	return func(p *Poller) {
		p.clock = c
	}
}

func WithObserver(o Observer) Option {
	return func(p *Poller) {
		p.observers = append(p.observers, o)
	}
}

func New(client *http.Client, cfg Config, opts ...Option) *Poller {
	if client == nil {
		client = xhttp.NewHTTPClient()
	}
	p := &Poller{
		client: client,
		cfg:    cfg.withDefaults(),
		clock:  RealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Config() Config {
	return p.cfg
}

func (p *Poller) Observe(o Observer) {
	p.mu.Lock()
	p.observers = append(p.observers, o)
	p.mu.Unlock()
}

// Run polls until ctx is cancelled, then waits for the outstanding request.
// The first request goes out one interval after Run starts.
func (p *Poller) Run(ctx context.Context) error {
	logger := xslog.FromContext(ctx)
	logger.InfoContext(ctx, "status polling started",
		xslog.URL(p.cfg.URL),
		xslog.Interval(p.cfg.Interval),
	)

	ticker := p.clock.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	defer p.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			logger.InfoContext(ctx, "status polling stopped")
			return nil
		case <-ticker.C():
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	seq := p.seq.Add(1)

	if !p.inFlight.CompareAndSwap(false, true) {
		r := Result{Seq: seq, URL: p.cfg.URL, StartedAt: p.clock.Now(), Skipped: true}
		xslog.FromContext(ctx).DebugContext(ctx, "status poll skipped, previous request in flight", xslog.Seq(seq))
		p.notify(r)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		r := p.send(ctx, seq)
		p.inFlight.Store(false)
		p.report(ctx, r)
	}()
}

// PollOnce sends a single request outside the ticker loop.
func (p *Poller) PollOnce(ctx context.Context) Result {
	r := p.send(ctx, p.seq.Add(1))
	p.report(ctx, r)
	return r
}

func (p *Poller) send(ctx context.Context, seq uint64) Result {
	r := Result{Seq: seq, URL: p.cfg.URL, StartedAt: p.clock.Now()}

	reqCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, p.cfg.URL, strings.NewReader(p.cfg.Payload.Encode()))
	if err != nil {
		r.Err = fmt.Errorf("creating request: %w", err)
		return r
	}
	req.Header.Set(xhttp.ContentType, xhttp.MIMEApplicationForm)

	resp, err := p.client.Do(req)
	r.Latency = p.clock.Now().Sub(r.StartedAt)
	if err != nil {
		r.Err = fmt.Errorf("executing request: %w", err)
		return r
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	r.Status = resp.StatusCode
	r.Body = string(body)
	if err != nil {
		r.Err = fmt.Errorf("reading response: %w", err)
		return r
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.Err = &StatusError{Code: resp.StatusCode}
	}
	return r
}

func (p *Poller) report(ctx context.Context, r Result) {
	logger := xslog.FromContext(ctx)
	attrs := []slog.Attr{
		xslog.Seq(r.Seq),
		xslog.URL(r.URL),
		xslog.HTTPStatus(r.Status),
		xslog.Duration(r.Latency),
	}

	switch {
	case r.Err == nil:
		logger.LogAttrs(ctx, slog.LevelInfo, "status poll", append(attrs, xslog.Body(r.Body))...)
	case errors.Is(r.Err, context.Canceled) && ctx.Err() != nil:
		logger.LogAttrs(context.WithoutCancel(ctx), slog.LevelDebug, "status poll cancelled", attrs...)
	default:
		logger.LogAttrs(ctx, slog.LevelWarn, "status poll failed", append(attrs, xslog.Error(r.Err))...)
	}

	p.notify(r)
}

func (p *Poller) notify(r Result) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, o := range p.observers {
		o(r)
	}
}
