package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
	"github.com/himanshusaroha648/lastanime-backend/internal/ports"
)

// In-memory fakes of the persistence gateway, shared by the app tests.

type memSeriesRepo struct {
	mu     sync.Mutex
	bySlug map[string]domain.Series
}

func newMemSeriesRepo() *memSeriesRepo {
	return &memSeriesRepo{bySlug: map[string]domain.Series{}}
}

func (r *memSeriesRepo) Upsert(_ context.Context, s domain.Series) (domain.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.bySlug[s.Slug]; ok {
		s.CreatedAt = prev.CreatedAt
	}
	r.bySlug[s.Slug] = s
	return s, nil
}

func (r *memSeriesRepo) GetBySlug(_ context.Context, slug string) (domain.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.bySlug[slug]
	if !ok {
		return domain.Series{}, ports.ErrNotFound
	}
	return s, nil
}

func (r *memSeriesRepo) List(_ context.Context, limit int) ([]domain.Series, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Series, 0, len(r.bySlug))
	for _, s := range r.bySlug {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memEpisodeRepo struct {
	mu    sync.Mutex
	byKey map[string]domain.Episode
}

func newMemEpisodeRepo() *memEpisodeRepo {
	return &memEpisodeRepo{byKey: map[string]domain.Episode{}}
}

func episodeKey(slug string, season, episode int) string {
	return fmt.Sprintf("%s-%dx%d", slug, season, episode)
}

func (r *memEpisodeRepo) Upsert(_ context.Context, e domain.Episode) (domain.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := e.Key()
	if prev, ok := r.byKey[key]; ok {
		e.CreatedAt = prev.CreatedAt
	}
	r.byKey[key] = e
	return e, nil
}

func (r *memEpisodeRepo) Get(_ context.Context, slug string, season, episode int) (domain.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byKey[episodeKey(slug, season, episode)]
	if !ok {
		return domain.Episode{}, ports.ErrNotFound
	}
	return e, nil
}

func (r *memEpisodeRepo) ListBySeries(_ context.Context, slug string) ([]domain.Episode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Episode
	for _, e := range r.byKey {
		if e.SeriesSlug == slug {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].Episode < out[j].Episode
	})
	return out, nil
}

type memLatestRepo struct {
	mu    sync.Mutex
	byKey map[string]domain.LatestEpisode
}

func newMemLatestRepo() *memLatestRepo {
	return &memLatestRepo{byKey: map[string]domain.LatestEpisode{}}
}

func (r *memLatestRepo) Add(_ context.Context, entry domain.LatestEpisode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[episodeKey(entry.SeriesSlug, entry.Season, entry.Episode)] = entry
	return nil
}

func (r *memLatestRepo) Prune(_ context.Context, maxCount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if maxCount <= 0 || len(r.byKey) <= maxCount {
		return 0, nil
	}
	entries := make([]domain.LatestEpisode, 0, len(r.byKey))
	for _, e := range r.byKey {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].AddedAt.After(entries[j].AddedAt) })
	removed := 0
	for _, e := range entries[maxCount:] {
		delete(r.byKey, episodeKey(e.SeriesSlug, e.Season, e.Episode))
		removed++
	}
	return removed, nil
}

func (r *memLatestRepo) List(_ context.Context, limit int) ([]domain.LatestEpisode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LatestEpisode, 0, len(r.byKey))
	for _, e := range r.byKey {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.After(out[j].AddedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
