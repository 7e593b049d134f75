package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/garrettladley/wext/internal/poller"
	"github.com/garrettladley/wext/internal/xslog"
)

const DefaultLimit = 20

// Record is a stored poll result.
type Record struct {
	ID        int64
	Seq       uint64
	URL       string
	StartedAt time.Time
	Latency   time.Duration
	Status    int
	Body      string
	Error     string
	Skipped   bool
}

func (r Record) OK() bool {
	return !r.Skipped && r.Error == ""
}

func FromResult(r poller.Result) Record {
	rec := Record{
		Seq:       r.Seq,
		URL:       r.URL,
		StartedAt: r.StartedAt,
		Latency:   r.Latency,
		Status:    r.Status,
		Body:      r.Body,
		Skipped:   r.Skipped,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}

type Stats struct {
	Count       int
	Failures    int
	Skipped     int
	MeanLatency time.Duration
	Last        *time.Time
}

type Repository interface {
	Insert(ctx context.Context, rec Record) (int64, error)
	Latest(ctx context.Context, limit int) ([]Record, error)
	Stats(ctx context.Context) (Stats, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

var _ Repository = (*Store)(nil)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const insertRecord = `
INSERT INTO poll_results (seq, url, started_at_ms, latency_ms, status, body, error, skipped)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	res, err := s.db.ExecContext(ctx, insertRecord,
		int64(rec.Seq),
		rec.URL,
		rec.StartedAt.UnixMilli(),
		rec.Latency.Milliseconds(),
		rec.Status,
		rec.Body,
		rec.Error,
		boolToInt(rec.Skipped),
	)
	if err != nil {
		return 0, fmt.Errorf("insert poll result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("poll result id: %w", err)
	}
	return id, nil
}

const latestRecords = `
SELECT id, seq, url, started_at_ms, latency_ms, status, body, error, skipped
FROM poll_results
ORDER BY started_at_ms DESC, id DESC
LIMIT ?`

func (s *Store) Latest(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, latestRecords, limit)
	if err != nil {
		return nil, fmt.Errorf("query poll results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]Record, 0, limit)
	for rows.Next() {
		var (
			rec                 Record
			seq, startMS, latMS int64
			skipped             int
		)
		if err := rows.Scan(&rec.ID, &seq, &rec.URL, &startMS, &latMS, &rec.Status, &rec.Body, &rec.Error, &skipped); err != nil {
			return nil, fmt.Errorf("scan poll result: %w", err)
		}
		rec.Seq = uint64(seq)
		rec.StartedAt = time.UnixMilli(startMS).UTC()
		rec.Latency = time.Duration(latMS) * time.Millisecond
		rec.Skipped = skipped != 0
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate poll results: %w", err)
	}
	return records, nil
}

const statsQuery = `
SELECT
	COUNT(*),
	COALESCE(SUM(CASE WHEN skipped = 0 AND error != '' THEN 1 ELSE 0 END), 0),
	COALESCE(SUM(skipped), 0),
	AVG(CASE WHEN skipped = 0 AND error = '' THEN latency_ms END),
	MAX(started_at_ms)
FROM poll_results`

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		st   Stats
		mean sql.NullFloat64
		last sql.NullInt64
	)
	if err := s.db.QueryRowContext(ctx, statsQuery).Scan(&st.Count, &st.Failures, &st.Skipped, &mean, &last); err != nil {
		return Stats{}, fmt.Errorf("poll result stats: %w", err)
	}
	if mean.Valid {
		st.MeanLatency = time.Duration(mean.Float64 * float64(time.Millisecond))
	}
	if last.Valid {
		t := time.UnixMilli(last.Int64).UTC()
		st.Last = &t
	}
	return st, nil
}

func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM poll_results WHERE started_at_ms < ?", before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete poll results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleted poll results: %w", err)
	}
	return n, nil
}

// Recorder stores poll results from a single goroutine so observing never
// blocks the poller. Close stops accepting results and waits until every
// queued one is written.
type Recorder struct {
	repo   Repository
	ctx    context.Context
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	queue  chan Record
	done   chan struct{}
}

const recorderQueue = 64

func NewRecorder(ctx context.Context, repo Repository) *Recorder {
	r := &Recorder{
		repo:   repo,
		ctx:    context.WithoutCancel(ctx),
		logger: xslog.FromContext(ctx),
		queue:  make(chan Record, recorderQueue),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer close(r.done)
	for rec := range r.queue {
		if _, err := r.repo.Insert(r.ctx, rec); err != nil {
			r.logger.WarnContext(r.ctx, "failed to record poll result", xslog.Seq(rec.Seq), xslog.Error(err))
		}
	}
}

// Observe queues a result. It is a poller.Observer.
func (r *Recorder) Observe(res poller.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.LogAttrs(r.ctx, slog.LevelWarn, "poll history closed, dropping result", xslog.Seq(res.Seq))
		return
	}
	select {
	case r.queue <- FromResult(res):
	default:
		r.logger.LogAttrs(r.ctx, slog.LevelWarn, "poll history queue full, dropping result", xslog.Seq(res.Seq))
	}
}

// Close drains the queue. Call it after the poller has stopped and before the
// database is closed.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

// Prune deletes results older than retention. A zero retention keeps
// everything.
func Prune(ctx context.Context, repo Repository, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return repo.DeleteBefore(ctx, now.Add(-retention))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
