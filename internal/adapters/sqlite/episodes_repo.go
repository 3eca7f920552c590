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

type EpisodesRepository struct {
	db *sql.DB
}

func NewEpisodesRepository(db *sql.DB) *EpisodesRepository {
	return &EpisodesRepository{db: db}
}

type serverRow struct {
	Option *int   `json:"option"`
	URL    string `json:"url"`
}

// Upsert insère ou met à jour sur (series_slug, season, episode). Jamais
// d'insert sec: le même épisode revu donne le même enregistrement.
func (r *EpisodesRepository) Upsert(ctx context.Context, e domain.Episode) (domain.Episode, error) {
	servers, err := marshalServers(e.Servers)
	if err != nil {
		return domain.Episode{}, err
	}

	now := time.Now().UTC()
	created := e.CreatedAt
	if created.IsZero() {
		created = now
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO episodes(
			series_slug, season, episode, title, thumbnail, servers,
			created_at, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(series_slug, season, episode) DO UPDATE SET
			title = excluded.title,
			thumbnail = excluded.thumbnail,
			servers = excluded.servers,
			updated_at = excluded.updated_at
	`,
		e.SeriesSlug, e.Season, e.Episode, e.Title, e.Thumbnail, servers,
		created.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return domain.Episode{}, err
	}
	return r.Get(ctx, e.SeriesSlug, e.Season, e.Episode)
}

func (r *EpisodesRepository) Get(ctx context.Context, seriesSlug string, season, episode int) (domain.Episode, error) {
	var e domain.Episode
	var servers, created, updated string
	err := r.db.QueryRowContext(ctx, `
		SELECT series_slug, season, episode, title, thumbnail, servers,
			created_at, updated_at
		FROM episodes
		WHERE series_slug = ? AND season = ? AND episode = ?
	`, seriesSlug, season, episode).Scan(
		&e.SeriesSlug, &e.Season, &e.Episode, &e.Title, &e.Thumbnail, &servers,
		&created, &updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Episode{}, ports.ErrNotFound
		}
		return domain.Episode{}, err
	}
	e.Servers = unmarshalServers(servers)
	if t, err := time.Parse(time.RFC3339, created); err == nil {
		e.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		e.UpdatedAt = t
	}
	return e, nil
}

func (r *EpisodesRepository) ListBySeries(ctx context.Context, seriesSlug string) ([]domain.Episode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT season, episode FROM episodes
		WHERE series_slug = ?
		ORDER BY season ASC, episode ASC
	`, seriesSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type key struct{ season, episode int }
	keys := []key{}
	for rows.Next() {
		var k key
		if err := rows.Scan(&k.season, &k.episode); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.Episode, 0, len(keys))
	for _, k := range keys {
		e, err := r.Get(ctx, seriesSlug, k.season, k.episode)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func marshalServers(servers []domain.Server) (string, error) {
	rows := make([]serverRow, 0, len(servers))
	for _, s := range servers {
		rows = append(rows, serverRow{Option: s.Option, URL: s.URL})
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalServers(s string) []domain.Server {
	if s == "" {
		return nil
	}
	var rows []serverRow
	if err := json.Unmarshal([]byte(s), &rows); err != nil {
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	out := make([]domain.Server, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Server{Option: r.Option, URL: r.URL})
	}
	return out
}
