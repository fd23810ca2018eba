package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"skill-swap/internal/database"
	"skill-swap/internal/domain/match"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	// CreateIfAbsent inserts the record keyed by its canonical unordered
	// pair, or returns the existing record untouched. Concurrent duplicate
	// inserts are absorbed by the pair uniqueness constraint and never
	// surfaced.
	CreateIfAbsent(ctx context.Context, rec match.Record) (match.Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (match.Record, error)
	// ListByUser returns matches involving the user, newest first. A nil
	// status means any status; limit <= 0 means no limit.
	ListByUser(ctx context.Context, userID uuid.UUID, status *match.Status, limit int) ([]match.Record, error)
	// ListAcceptedInvolvingAny returns accepted matches where either side
	// is one of the given users.
	ListAcceptedInvolvingAny(ctx context.Context, userIDs []uuid.UUID) ([]match.Record, error)
	// PartnerIDs returns every user the given user has a match with,
	// regardless of status.
	PartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// UpdateInterest applies one side's decision under a row lock and
	// returns the updated record. ErrMatchNotFound covers both a missing
	// match id and a non-participant user.
	UpdateInterest(ctx context.Context, matchID, userID uuid.UUID, interested bool) (match.Record, error)
}

const matchColumns = `id, user1_id, user2_id, skill_offered_summary, skill_wanted_summary, compatibility_score, status, user1_interest, user2_interest, algorithm_data, created_at, expires_at`

type PostgresMatchRepository struct {
	db  database.DB
	now func() time.Time
}

func NewPostgresMatchRepository(db database.DB) *PostgresMatchRepository {
	return &PostgresMatchRepository{db: db, now: time.Now}
}

func (r *PostgresMatchRepository) CreateIfAbsent(ctx context.Context, rec match.Record) (match.Record, error) {
	u1, u2 := match.CanonicalPair(rec.User1ID, rec.User2ID)
	rec.User1ID, rec.User2ID = u1, u2

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.Status == "" {
		rec.Status = match.StatusPending
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.now().UTC()
	}
	if rec.ExpiresAt.IsZero() {
		rec.ExpiresAt = rec.CreatedAt.Add(match.Lifetime)
	}

	algo, err := json.Marshal(rec.AlgorithmData)
	if err != nil {
		return match.Record{}, err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO matches (`+matchColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 ON CONFLICT (user1_id, user2_id) DO NOTHING`,
		rec.ID, rec.User1ID, rec.User2ID,
		rec.SkillOfferedSummary, rec.SkillWantedSummary,
		rec.CompatibilityScore, rec.Status,
		rec.User1Interest, rec.User2Interest,
		algo, rec.CreatedAt, rec.ExpiresAt,
	)
	if err != nil {
		return match.Record{}, err
	}

	// Reselect by pair: either our insert landed or a concurrent one did,
	// and in both cases the stored record wins.
	row := r.db.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE user1_id = $1 AND user2_id = $2`,
		u1, u2,
	)
	stored, err := scanMatch(row)
	if err != nil {
		return match.Record{}, err
	}
	return stored, nil
}

func (r *PostgresMatchRepository) GetByID(ctx context.Context, id uuid.UUID) (match.Record, error) {
	row := r.db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	rec, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return match.Record{}, ErrMatchNotFound
		}
		return match.Record{}, err
	}
	return rec, nil
}

func (r *PostgresMatchRepository) ListByUser(ctx context.Context, userID uuid.UUID, status *match.Status, limit int) ([]match.Record, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE (user1_id = $1 OR user2_id = $1)`
	args := []any{userID}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	return r.queryMatches(ctx, query, args...)
}

func (r *PostgresMatchRepository) ListAcceptedInvolvingAny(ctx context.Context, userIDs []uuid.UUID) ([]match.Record, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	return r.queryMatches(ctx,
		`SELECT `+matchColumns+` FROM matches
		 WHERE status = $1 AND (user1_id = ANY($2) OR user2_id = ANY($2))`,
		match.StatusAccepted, userIDs,
	)
}

func (r *PostgresMatchRepository) PartnerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT CASE WHEN user1_id = $1 THEN user2_id ELSE user1_id END
		 FROM matches WHERE user1_id = $1 OR user2_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresMatchRepository) UpdateInterest(ctx context.Context, matchID, userID uuid.UUID, interested bool) (match.Record, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return match.Record{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`,
		matchID,
	)
	rec, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return match.Record{}, ErrMatchNotFound
		}
		return match.Record{}, err
	}

	if err := rec.ApplyInterest(userID, interested); err != nil {
		return match.Record{}, ErrMatchNotFound
	}

	_, err = tx.Exec(ctx,
		`UPDATE matches SET status = $1, user1_interest = $2, user2_interest = $3 WHERE id = $4`,
		rec.Status, rec.User1Interest, rec.User2Interest, rec.ID,
	)
	if err != nil {
		return match.Record{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return match.Record{}, err
	}
	return rec, nil
}

func (r *PostgresMatchRepository) queryMatches(ctx context.Context, query string, args ...any) ([]match.Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]match.Record, 0)
	for rows.Next() {
		rec, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanMatch(s scanner) (match.Record, error) {
	var rec match.Record
	var status string
	var algo []byte
	if err := s.Scan(
		&rec.ID, &rec.User1ID, &rec.User2ID,
		&rec.SkillOfferedSummary, &rec.SkillWantedSummary,
		&rec.CompatibilityScore, &status,
		&rec.User1Interest, &rec.User2Interest,
		&algo, &rec.CreatedAt, &rec.ExpiresAt,
	); err != nil {
		return match.Record{}, err
	}
	rec.Status = match.Status(status)
	if len(algo) > 0 {
		if err := json.Unmarshal(algo, &rec.AlgorithmData); err != nil {
			return match.Record{}, err
		}
	}
	return rec, nil
}
