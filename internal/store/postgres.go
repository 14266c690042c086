package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/punchamoorthee/txreplay/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrRunNotFound     = errors.New("replay run not found")
	ErrAccountNotFound = errors.New("account not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS account_snapshots (
	run_id     UUID           NOT NULL,
	client     INTEGER        NOT NULL,
	available  NUMERIC(24, 4) NOT NULL,
	held       NUMERIC(24, 4) NOT NULL,
	total      NUMERIC(24, 4) NOT NULL,
	locked     BOOLEAN        NOT NULL,
	created_at TIMESTAMPTZ    NOT NULL,
	PRIMARY KEY (run_id, client)
)`

var snapshotColumns = []string{"run_id", "client", "available", "held", "total", "locked", "created_at"}

// Store archives replay results in Postgres, keyed by run id.
type Store struct {
	Db *pgxpool.Pool
}

func NewStore(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{Db: pool}, nil
}

func (s *Store) Close() {
	s.Db.Close()
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.Db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveRun bulk inserts the snapshots of one replay in a single transaction.
func (s *Store) SaveRun(ctx context.Context, runID uuid.UUID, snaps []models.AccountSnapshot) (int64, error) {
	tx, err := s.Db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("tx begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"account_snapshots"},
		snapshotColumns,
		pgx.CopyFromRows(snapshotRows(runID, snaps, time.Now().UTC())),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk insert failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("tx commit failed: %w", err)
	}
	return n, nil
}

// ListAccounts returns the archived snapshots of a run ordered by client.
func (s *Store) ListAccounts(ctx context.Context, runID uuid.UUID) ([]models.AccountSnapshot, error) {
	rows, err := s.Db.Query(ctx,
		"SELECT client, available, held, total, locked FROM account_snapshots WHERE run_id = $1 ORDER BY client",
		toUUID(runID))
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.AccountSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrRunNotFound
	}
	return out, nil
}

// GetAccount retrieves one archived snapshot.
func (s *Store) GetAccount(ctx context.Context, runID uuid.UUID, client models.ClientID) (*models.AccountSnapshot, error) {
	row := s.Db.QueryRow(ctx,
		"SELECT client, available, held, total, locked FROM account_snapshots WHERE run_id = $1 AND client = $2",
		toUUID(runID), int32(client))

	snap, err := scanSnapshot(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func scanSnapshot(row pgx.Row) (models.AccountSnapshot, error) {
	var (
		client                 int32
		available, held, total pgtype.Numeric
		locked                 bool
	)
	if err := row.Scan(&client, &available, &held, &total, &locked); err != nil {
		return models.AccountSnapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	return models.AccountSnapshot{
		Client:    models.ClientID(client),
		Available: fromNumeric(available),
		Held:      fromNumeric(held),
		Total:     fromNumeric(total),
		Locked:    locked,
	}, nil
}

func snapshotRows(runID uuid.UUID, snaps []models.AccountSnapshot, at time.Time) [][]any {
	id := toUUID(runID)
	rows := make([][]any, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []any{
			id,
			int32(s.Client),
			toNumeric(s.Available),
			toNumeric(s.Held),
			toNumeric(s.Total),
			s.Locked,
			at,
		})
	}
	return rows
}

func toUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func toNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func fromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
