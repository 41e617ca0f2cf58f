package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/kapu/chess-coach-client-go/internal/domain"
)

// Repository stores finished games for later review.
type Repository interface {
	SaveFinishedGame(ctx context.Context, rec *domain.GameRecord) error
	RecentGames(ctx context.Context, limit int) ([]*domain.GameRecord, error)
	Close() error
}

type pgRepository struct {
	db *sql.DB
}

// NewRepository opens a Postgres-backed archive.
func NewRepository(databaseURL string) (Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &pgRepository{db: db}, nil
}

func (r *pgRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveFinishedGame upserts one finished game keyed by its session uuid.
func (r *pgRepository) SaveFinishedGame(ctx context.Context, rec *domain.GameRecord) error {
	if r == nil || r.db == nil || rec == nil {
		return nil
	}

	movesRaw, _ := json.Marshal(rec.MovesUCI)
	thinkRaw, _ := json.Marshal(rec.ThinkTimesMs)
	duration := rec.Duration.Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO coach_games (
	    session_uuid, side, difficulty, result,
	    moves_uci, think_times_ms,
	    started_at, ended_at, duration_ms
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9
	  ) ON CONFLICT (session_uuid) DO UPDATE SET
	    side=EXCLUDED.side,
	    difficulty=EXCLUDED.difficulty,
	    result=EXCLUDED.result,
	    moves_uci=EXCLUDED.moves_uci,
	    think_times_ms=EXCLUDED.think_times_ms,
	    started_at=EXCLUDED.started_at,
	    ended_at=EXCLUDED.ended_at,
	    duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		rec.SessionUUID, rec.Side, rec.Difficulty, rec.Result,
		string(movesRaw), string(thinkRaw),
		rec.StartedAt, rec.EndedAt, duration,
	)
	return err
}

func (r *pgRepository) RecentGames(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	q := `SELECT id, session_uuid, side, difficulty, result,
	        moves_uci, think_times_ms, started_at, ended_at, duration_ms
	      FROM coach_games ORDER BY ended_at DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.GameRecord
	for rows.Next() {
		var rec domain.GameRecord
		var movesRaw, thinkRaw string
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.SessionUUID, &rec.Side, &rec.Difficulty, &rec.Result,
			&movesRaw, &thinkRaw, &rec.StartedAt, &rec.EndedAt, &durationMs); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(movesRaw), &rec.MovesUCI)
		_ = json.Unmarshal([]byte(thinkRaw), &rec.ThinkTimesMs)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, &rec)
	}
	return out, rows.Err()
}
