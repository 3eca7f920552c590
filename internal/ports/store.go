package ports

import (
	"context"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
)

type SeriesRepository interface {
	// Upsert insère ou met à jour sur la clé slug. Idempotent.
	Upsert(ctx context.Context, s domain.Series) (domain.Series, error)
	GetBySlug(ctx context.Context, slug string) (domain.Series, error)
	List(ctx context.Context, limit int) ([]domain.Series, error)
}

type EpisodeRepository interface {
	// Upsert insère ou met à jour sur la clé (seriesSlug, season, episode).
	Upsert(ctx context.Context, e domain.Episode) (domain.Episode, error)
	Get(ctx context.Context, seriesSlug string, season, episode int) (domain.Episode, error)
	ListBySeries(ctx context.Context, seriesSlug string) ([]domain.Episode, error)
}

type LatestRepository interface {
	// Add insère ou met à jour sur la clé naturelle de l'entrée.
	Add(ctx context.Context, entry domain.LatestEpisode) error
	// Prune supprime tout sauf les maxCount entrées les plus récentes
	// (AddedAt décroissant) et renvoie le nombre de lignes supprimées.
	Prune(ctx context.Context, maxCount int) (int, error)
	List(ctx context.Context, limit int) ([]domain.LatestEpisode, error)
}
