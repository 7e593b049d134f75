package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ BeaconStore = (*PostgresBeaconStore)(nil)

type PostgresBeaconStore struct {
	pool *pgxpool.Pool
}

func NewPostgresBeaconStore(pool *pgxpool.Pool) *PostgresBeaconStore {
	return &PostgresBeaconStore{pool: pool}
}

const insertBeacon = `
INSERT INTO beacons (id, name, city, ip, session_id, user_agent, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO NOTHING`

func (s *PostgresBeaconStore) InsertBeacon(ctx context.Context, b Beacon) error {
	_, err := s.pool.Exec(ctx, insertBeacon,
		b.ID.String(),
		b.Name,
		b.City,
		b.IP,
		b.SessionID,
		b.UserAgent,
		b.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert beacon: %w", err)
	}
	return nil
}

const recentBeacons = `
SELECT id::text, name, city, ip, session_id, user_agent, received_at
FROM beacons
ORDER BY received_at DESC
LIMIT $1`

func (s *PostgresBeaconStore) RecentBeacons(ctx context.Context, limit int) ([]Beacon, error) {
	rows, err := s.pool.Query(ctx, recentBeacons, limit)
	if err != nil {
		return nil, fmt.Errorf("query beacons: %w", err)
	}

	beacons, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Beacon, error) {
		var (
			b  Beacon
			id string
		)
		if err := row.Scan(&id, &b.Name, &b.City, &b.IP, &b.SessionID, &b.UserAgent, &b.ReceivedAt); err != nil {
			return Beacon{}, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return Beacon{}, fmt.Errorf("parse beacon id %q: %w", id, err)
		}
		b.ID = parsed
		return b, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan beacons: %w", err)
	}
	return beacons, nil
}

const deleteBeaconsBefore = `DELETE FROM beacons WHERE received_at < $1`

func (s *PostgresBeaconStore) DeleteBeaconsBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, deleteBeaconsBefore, before)
	if err != nil {
		return 0, fmt.Errorf("delete beacons: %w", err)
	}
	return tag.RowsAffected(), nil
}
