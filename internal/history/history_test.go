package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/garrettladley/wext/internal/db"
	"github.com/garrettladley/wext/internal/poller"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	sqlDB, err := db.Open(t.Context(), filepath.Join(t.TempDir(), "wext.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return New(sqlDB)
}

func TestStoreInsertLatest(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	in := []Record{
		{Seq: 1, URL: "http://localhost:8080/", StartedAt: base, Latency: 12 * time.Millisecond, Status: 200, Body: "ok"},
		{Seq: 2, URL: "http://localhost:8080/", StartedAt: base.Add(3 * time.Second), Skipped: true},
		{Seq: 3, URL: "http://localhost:8080/", StartedAt: base.Add(6 * time.Second), Latency: 30 * time.Millisecond, Status: 500, Error: "unexpected status: 500 Internal Server Error"},
	}
	for _, rec := range in {
		if _, err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	got, err := s.Latest(ctx, 2)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}

	want := []Record{in[2], in[1]}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Record{}, "ID")); diff != "" {
		t.Errorf("Latest() mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreStats(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := t.Context()

	empty, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() on empty store error = %v", err)
	}
	if diff := cmp.Diff(Stats{}, empty); diff != "" {
		t.Errorf("empty Stats() mismatch (-want +got):\n%s", diff)
	}

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, rec := range []Record{
		{Seq: 1, StartedAt: base, Latency: 10 * time.Millisecond, Status: 200},
		{Seq: 2, StartedAt: base.Add(time.Second), Latency: 30 * time.Millisecond, Status: 200},
		{Seq: 3, StartedAt: base.Add(2 * time.Second), Skipped: true},
		{Seq: 4, StartedAt: base.Add(3 * time.Second), Latency: time.Second, Error: "executing request: connection refused"},
	} {
		if _, err := s.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	got, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}

	last := base.Add(3 * time.Second)
	want := Stats{Count: 4, Failures: 1, Skipped: 1, MeanLatency: 20 * time.Millisecond, Last: &last}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Stats() mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreDeleteBefore(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := t.Context()
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	for i := range 5 {
		_, _ = s.Insert(ctx, Record{Seq: uint64(i + 1), StartedAt: base.Add(time.Duration(i) * time.Minute)})
	}

	n, err := s.DeleteBefore(ctx, base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	rest, _ := s.Latest(ctx, 10)
	if len(rest) != 3 || rest[len(rest)-1].Seq != 3 {
		t.Errorf("remaining = %+v, want seqs 5..3", rest)
	}
}

func TestFromResult(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   poller.Result
		want Record
	}{
		{
			name: "ok",
			in:   poller.Result{Seq: 1, URL: "u", StartedAt: at, Status: 200, Body: "b"},
			want: Record{Seq: 1, URL: "u", StartedAt: at, Status: 200, Body: "b"},
		},
		{
			name: "error",
			in:   poller.Result{Seq: 2, Err: errors.New("boom")},
			want: Record{Seq: 2, Error: "boom"},
		},
		{
			name: "skipped",
			in:   poller.Result{Seq: 3, Skipped: true},
			want: Record{Seq: 3, Skipped: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := FromResult(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("FromResult() mismatch (-want +got):\n%s", diff)
			}
			if got.OK() != tt.in.OK() {
				t.Errorf("OK() = %v, want %v", got.OK(), tt.in.OK())
			}
		})
	}
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	r := NewRecorder(t.Context(), s)
	t.Cleanup(r.Close)

	r.Observe(poller.Result{Seq: 7, URL: "u", StartedAt: time.Now(), Status: 200})

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		recs, err := s.Latest(t.Context(), 1)
		if err != nil {
			t.Fatalf("Latest() error = %v", err)
		}
		if len(recs) == 1 {
			if recs[0].Seq != 7 {
				t.Errorf("recorded seq = %d, want 7", recs[0].Seq)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("result never recorded")
}

func TestRecorderCloseDrainsQueue(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx, cancel := context.WithCancel(t.Context())
	r := NewRecorder(ctx, s)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := range 10 {
		r.Observe(poller.Result{Seq: uint64(i + 1), URL: "u", StartedAt: base.Add(time.Duration(i) * time.Second), Status: 200})
	}
	cancel()
	r.Close()

	st, err := s.Stats(t.Context())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if st.Count != 10 {
		t.Errorf("recorded %d results, want 10", st.Count)
	}

	// results after Close are dropped, not panicking on the closed queue
	r.Observe(poller.Result{Seq: 11})
	r.Close()
}

func TestPrune(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		retention time.Duration
		wantN     int64
		wantLeft  int
	}{
		{name: "disabled", retention: 0, wantN: 0, wantLeft: 3},
		{name: "one day", retention: 24 * time.Hour, wantN: 2, wantLeft: 1},
		{name: "one week", retention: 7 * 24 * time.Hour, wantN: 0, wantLeft: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestStore(t)
			ctx := t.Context()
			for i, age := range []time.Duration{72 * time.Hour, 48 * time.Hour, time.Hour} {
				rec := Record{Seq: uint64(i + 1), URL: "u", StartedAt: base.Add(-age), Status: 200}
				if _, err := s.Insert(ctx, rec); err != nil {
					t.Fatalf("Insert() error = %v", err)
				}
			}

			n, err := Prune(ctx, s, tt.retention, base)
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if n != tt.wantN {
				t.Errorf("Prune() = %d, want %d", n, tt.wantN)
			}
			st, err := s.Stats(ctx)
			if err != nil {
				t.Fatalf("Stats() error = %v", err)
			}
			if st.Count != tt.wantLeft {
				t.Errorf("remaining = %d, want %d", st.Count, tt.wantLeft)
			}
		})
	}
}
