package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
)

type LatestRepository struct {
	db *sql.DB
}

func NewLatestRepository(db *sql.DB) *LatestRepository {
	return &LatestRepository{db: db}
}

// Add insère ou met à jour l'entrée sur sa clé naturelle. Revoir le même
// épisode rafraîchit added_at (il remonte dans la fenêtre).
func (r *LatestRepository) Add(ctx context.Context, entry domain.LatestEpisode) error {
	addedAt := entry.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO latest_episodes(
			series_slug, series_title, season, episode, episode_title,
			thumbnail, added_at
		) VALUES(?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(series_slug, season, episode) DO UPDATE SET
			series_title = excluded.series_title,
			episode_title = excluded.episode_title,
			thumbnail = excluded.thumbnail,
			added_at = excluded.added_at
	`,
		entry.SeriesSlug, entry.SeriesTitle, entry.Season, entry.Episode,
		entry.EpisodeTitle, entry.Thumbnail, addedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Prune supprime tout sauf les maxCount entrées les plus récentes par
// added_at décroissant.
func (r *LatestRepository) Prune(ctx context.Context, maxCount int) (int, error) {
	if maxCount <= 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM latest_episodes
		WHERE rowid NOT IN (
			SELECT rowid FROM latest_episodes
			ORDER BY added_at DESC, rowid DESC
			LIMIT ?
		)
	`, maxCount)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *LatestRepository) List(ctx context.Context, limit int) ([]domain.LatestEpisode, error) {
	q := `
		SELECT series_slug, series_title, season, episode, episode_title,
			thumbnail, added_at
		FROM latest_episodes
		ORDER BY added_at DESC, rowid DESC
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

	out := make([]domain.LatestEpisode, 0)
	for rows.Next() {
		var e domain.LatestEpisode
		var addedAt string
		if err := rows.Scan(&e.SeriesSlug, &e.SeriesTitle, &e.Season, &e.Episode, &e.EpisodeTitle, &e.Thumbnail, &addedAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
			e.AddedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
