package beacon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/garrettladley/wext/internal/storage"
	"github.com/garrettladley/wext/internal/validator"
	"github.com/garrettladley/wext/internal/xslog"
	"github.com/google/uuid"
)

var _ Service = (*Intake)(nil)

type Intake struct {
	store storage.BeaconStore
	now   func() time.Time
}

func NewIntake(store storage.BeaconStore) *Intake {
	return &Intake{store: store, now: time.Now}
}

func (s *Intake) Record(ctx context.Context, in Input, meta Meta) (storage.Beacon, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.City = strings.TrimSpace(in.City)
	if err := validator.Validate(in); err != nil {
		return storage.Beacon{}, err
	}

	b := storage.Beacon{
		ID:         uuid.New(),
		Name:       in.Name,
		City:       in.City,
		IP:         meta.IP,
		SessionID:  meta.SessionID,
		UserAgent:  meta.UserAgent,
		ReceivedAt: s.now().UTC(),
	}
	if err := s.store.InsertBeacon(ctx, b); err != nil {
		return storage.Beacon{}, fmt.Errorf("failed to record beacon: %w", err)
	}

	xslog.FromContext(ctx).DebugContext(ctx, "beacon recorded", xslog.BeaconID(b.ID.String()), xslog.IP(b.IP))
	return b, nil
}

func (s *Intake) Recent(ctx context.Context, limit int) ([]storage.Beacon, error) {
	beacons, err := s.store.RecentBeacons(ctx, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list beacons: %w", err)
	}
	if beacons == nil {
		beacons = []storage.Beacon{}
	}
	return beacons, nil
}

func (s *Intake) Prune(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.store.DeleteBeaconsBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune beacons: %w", err)
	}
	return n, nil
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
