package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/avilchesko/betsheet/internal/pkg/models"
)

// BetJournal keeps a local append-only copy of every committed bet in
// PostgreSQL. The sheet stays the source of truth; the journal exists so
// commits and result updates survive independently of the Apps Script
// backend and can be queried without it.
type BetJournal struct {
	db *sql.DB
}

func NewBetJournal(dsn string) (*BetJournal, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	j := &BetJournal{db: db}
	if err := j.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return j, nil
}

func (j *BetJournal) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS bets (
		id SERIAL PRIMARY KEY,
		bet_id VARCHAR(100) NOT NULL UNIQUE,
		bet_date VARCHAR(10) NOT NULL,
		teams VARCHAR(500) NOT NULL,
		selection VARCHAR(200) NOT NULL,
		odds DECIMAL(10, 4) NOT NULL,
		stake DECIMAL(10, 4) NOT NULL,
		result VARCHAR(20) NOT NULL,
		sheet_row INTEGER NOT NULL DEFAULT 0,
		committed_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_bets_bet_id ON bets(bet_id);
	CREATE INDEX IF NOT EXISTS idx_bets_committed_at ON bets(committed_at DESC);
	`
	_, err := j.db.ExecContext(ctx, query)
	return err
}

// Append records one committed bet. A re-commit of the same bet id updates
// the existing row instead of failing.
func (j *BetJournal) Append(ctx context.Context, bet *models.Bet) error {
	query := `
	INSERT INTO bets (bet_id, bet_date, teams, selection, odds, stake, result, sheet_row, committed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (bet_id) DO UPDATE SET
		bet_date = EXCLUDED.bet_date,
		teams = EXCLUDED.teams,
		selection = EXCLUDED.selection,
		odds = EXCLUDED.odds,
		stake = EXCLUDED.stake,
		result = EXCLUDED.result,
		sheet_row = EXCLUDED.sheet_row,
		updated_at = NOW()
	`
	_, err := j.db.ExecContext(ctx, query,
		bet.BetID, bet.Date, bet.Teams, bet.Selection,
		bet.Odds, bet.Stake, string(bet.Result), bet.Row, bet.CommittedAt)
	if err != nil {
		return fmt.Errorf("failed to append bet %s: %w", bet.BetID, err)
	}
	return nil
}

// UpdateResult changes the settlement state of an already-journaled bet.
func (j *BetJournal) UpdateResult(ctx context.Context, betID string, result models.Result) error {
	res, err := j.db.ExecContext(ctx,
		`UPDATE bets SET result = $1, updated_at = NOW() WHERE bet_id = $2`,
		string(result), betID)
	if err != nil {
		return fmt.Errorf("failed to update result for %s: %w", betID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bet %s not found in journal", betID)
	}
	return nil
}

func (j *BetJournal) Close() error {
	return j.db.Close()
}
