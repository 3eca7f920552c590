package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
	"github.com/himanshusaroha648/lastanime-backend/internal/ports"
)

type SeriesRepository struct {
	db *sql.DB
}

func NewSeriesRepository(db *sql.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// Upsert insère ou met à jour sur le slug; created_at est préservé au
// conflit, seul updated_at bouge.
func (r *SeriesRepository) Upsert(ctx context.Context, s domain.Series) (domain.Series, error) {
	genres, err := marshalStrings(s.Genres)
	if err != nil {
		return domain.Series{}, err
	}
	studios, err := marshalStrings(s.Studios)
	if err != nil {
		return domain.Series{}, err
	}

	now := time.Now().UTC()
	created := s.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO series(
			slug, title, description, poster, backdrop, year, genres,
			rating, popularity, studios, tmdb_id, created_at, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			poster = excluded.poster,
			backdrop = excluded.backdrop,
			year = excluded.year,
			genres = excluded.genres,
			rating = excluded.rating,
			popularity = excluded.popularity,
			studios = excluded.studios,
			tmdb_id = excluded.tmdb_id,
			updated_at = excluded.updated_at
	`,
		s.Slug, s.Title, s.Description, s.Poster, s.Backdrop, s.Year, genres,
		s.Rating, s.Popularity, studios, s.TMDBID,
		created.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return domain.Series{}, err
	}
	return r.GetBySlug(ctx, s.Slug)
}

func (r *SeriesRepository) GetBySlug(ctx context.Context, slug string) (domain.Series, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT slug, title, description, poster, backdrop, year, genres,
			rating, popularity, studios, tmdb_id, created_at, updated_at
		FROM series
		WHERE slug = ?
	`, slug)
	s, err := scanSeries(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Series{}, ports.ErrNotFound
		}
		return domain.Series{}, err
	}
	return s, nil
}

func (r *SeriesRepository) List(ctx context.Context, limit int) ([]domain.Series, error) {
	q := `
		SELECT slug, title, description, poster, backdrop, year, genres,
			rating, popularity, studios, tmdb_id, created_at, updated_at
		FROM series
		ORDER BY updated_at DESC
	`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Series, 0)
	for rows.Next() {
		s, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeries(row rowScanner) (domain.Series, error) {
	var s domain.Series
	var genres, studios, created, updated string
	err := row.Scan(
		&s.Slug, &s.Title, &s.Description, &s.Poster, &s.Backdrop, &s.Year, &genres,
		&s.Rating, &s.Popularity, &studios, &s.TMDBID, &created, &updated,
	)
	if err != nil {
		return domain.Series{}, err
	}
	s.Genres = unmarshalStrings(genres)
	s.Studios = unmarshalStrings(studios)
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		s.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		s.UpdatedAt = t
	}
	return s, nil
}

func marshalStrings(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalStrings(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
