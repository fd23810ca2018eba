package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"skill-swap/internal/database"
	"skill-swap/internal/domain/skill"
	"skill-swap/internal/domain/user"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidFilter   = errors.New("invalid candidate filter")
)

// CandidateFilter narrows candidate retrieval. The zero value means "no
// extra filtering"; every set field is applied as a conjunction with the
// base active/skill-overlap filter.
type CandidateFilter struct {
	Skills    []string
	Location  string
	MinRating float64
	Languages []string
}

func (f CandidateFilter) Validate() error {
	if f.MinRating < 0 || f.MinRating > 5 {
		return ErrInvalidFilter
	}
	for _, s := range f.Skills {
		if strings.TrimSpace(s) == "" {
			return ErrInvalidFilter
		}
	}
	for _, l := range f.Languages {
		if strings.TrimSpace(l) == "" {
			return ErrInvalidFilter
		}
	}
	return nil
}

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.Profile, error)
	// ListCandidates returns up to cap active profiles other than the
	// requester whose skills overlap the requester's (offered against
	// wanted in either direction), narrowed by the filter.
	ListCandidates(ctx context.Context, requester user.Profile, f CandidateFilter, cap int) ([]user.Profile, error)
	// ListSimilar returns up to limit active profiles other than the user
	// whose offered or wanted skills overlap the given skill set.
	ListSimilar(ctx context.Context, userID uuid.UUID, skills []string, limit int) ([]user.Profile, error)
	GetSkillLevels(ctx context.Context, userID uuid.UUID) (map[string]skill.Level, error)
}

const profileColumns = `id, email, name, active, skills_offered, skills_wanted, location, languages, availability, rating_sum, rating_count, created_at, updated_at`

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (user.Profile, error) {
	row := r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Profile{}, ErrProfileNotFound
		}
		return user.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) ListCandidates(ctx context.Context, requester user.Profile, f CandidateFilter, cap int) ([]user.Profile, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if cap <= 0 {
		cap = 100
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(profileColumns).From("users")

	conds := []string{
		sb.NotEqual("id", requester.ID),
		sb.Equal("active", true),
	}

	// Bidirectional discovery: candidates who offer what the requester
	// wants, or want what the requester offers.
	overlap := make([]string, 0, 2)
	if len(requester.SkillsWanted) > 0 {
		overlap = append(overlap, "skills_offered && "+sb.Var(requester.SkillsWanted))
	}
	if len(requester.SkillsOffered) > 0 {
		overlap = append(overlap, "skills_wanted && "+sb.Var(requester.SkillsOffered))
	}
	if len(overlap) > 0 {
		conds = append(conds, sb.Or(overlap...))
	}

	if len(f.Skills) > 0 {
		conds = append(conds, "skills_offered && "+sb.Var(f.Skills))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		conds = append(conds, sb.ILike("location", "%"+loc+"%"))
	}
	if f.MinRating > 0 {
		conds = append(conds,
			"(CASE WHEN rating_count > 0 THEN rating_sum / rating_count ELSE 3.0 END) >= "+sb.Var(f.MinRating))
	}
	if len(f.Languages) > 0 {
		conds = append(conds, "languages && "+sb.Var(f.Languages))
	}

	sb.Where(conds...)
	sb.OrderBy("created_at DESC")
	sb.Limit(cap)

	return r.queryProfiles(ctx, sb)
}

func (r *PostgresProfileRepository) ListSimilar(ctx context.Context, userID uuid.UUID, skills []string, limit int) ([]user.Profile, error) {
	if len(skills) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(profileColumns).From("users")
	sb.Where(
		sb.NotEqual("id", userID),
		sb.Equal("active", true),
		sb.Or(
			"skills_offered && "+sb.Var(skills),
			"skills_wanted && "+sb.Var(skills),
		),
	)
	sb.Limit(limit)

	return r.queryProfiles(ctx, sb)
}

func (r *PostgresProfileRepository) GetSkillLevels(ctx context.Context, userID uuid.UUID) (map[string]skill.Level, error) {
	rows, err := r.db.Query(ctx,
		`SELECT skill_name, level FROM user_skills WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]skill.Level)
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, err
		}
		if lvl, ok := skill.ParseLevel(raw); ok {
			out[name] = lvl
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresProfileRepository) queryProfiles(ctx context.Context, sb *sqlbuilder.SelectBuilder) ([]user.Profile, error) {
	query, args := sb.Build()
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (user.Profile, error) {
	var p user.Profile
	var availability []byte
	if err := s.Scan(
		&p.ID, &p.Email, &p.Name, &p.Active,
		&p.SkillsOffered, &p.SkillsWanted,
		&p.Location, &p.Languages, &availability,
		&p.RatingSum, &p.RatingCount,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return user.Profile{}, err
	}
	if len(availability) > 0 {
		if err := json.Unmarshal(availability, &p.Availability); err != nil {
			return user.Profile{}, err
		}
	}
	return p, nil
}
