package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
	"github.com/himanshusaroha648/lastanime-backend/internal/ports"
)

func TestEpisodesRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEpisodesRepository(db.SQL)

	if _, err := repo.Get(ctx, "foo", 1, 1); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	opt := 1
	e := domain.Episode{
		SeriesSlug: "foo",
		Season:     1,
		Episode:    1,
		Title:      "Foo 1x1",
		Thumbnail:  "https://img.example/foo.jpg",
		Servers: []domain.Server{
			{Option: &opt, URL: "https://embed.example/e/one"},
			{Option: nil, URL: "https://embed.example/e/two"},
		},
	}
	created, err := repo.Upsert(ctx, e)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created.Key() != "foo-1x1" {
		t.Fatalf("key: got %q", created.Key())
	}
	if len(created.Servers) != 2 {
		t.Fatalf("servers: got %+v", created.Servers)
	}
	if created.Servers[0].Option == nil || *created.Servers[0].Option != 1 {
		t.Fatalf("server option lost: %+v", created.Servers[0])
	}
	if created.Servers[1].Option != nil {
		t.Fatalf("nil option not preserved: %+v", created.Servers[1])
	}
}

func TestEpisodesRepository_UpsertIsIdempotentOnNaturalKey(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEpisodesRepository(db.SQL)

	e := domain.Episode{SeriesSlug: "foo", Season: 2, Episode: 3, Title: "Foo 2x3"}
	first, err := repo.Upsert(ctx, e)
	if err != nil {
		t.Fatalf("Upsert(1): %v", err)
	}
	second, err := repo.Upsert(ctx, e)
	if err != nil {
		t.Fatalf("Upsert(2): %v", err)
	}
	if second.Title != first.Title || second.Season != first.Season || second.Episode != first.Episode {
		t.Fatalf("reprocessing changed the record: %+v vs %+v", first, second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at must survive upsert")
	}

	eps, err := repo.ListBySeries(ctx, "foo")
	if err != nil {
		t.Fatalf("ListBySeries: %v", err)
	}
	if len(eps) != 1 {
		t.Fatalf("want a single row, got %d", len(eps))
	}
}

func TestEpisodesRepository_ListBySeriesOrdered(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewEpisodesRepository(db.SQL)

	for _, k := range [][2]int{{2, 1}, {1, 2}, {1, 1}} {
		if _, err := repo.Upsert(ctx, domain.Episode{SeriesSlug: "foo", Season: k[0], Episode: k[1]}); err != nil {
			t.Fatalf("Upsert(%v): %v", k, err)
		}
	}

	eps, err := repo.ListBySeries(ctx, "foo")
	if err != nil {
		t.Fatalf("ListBySeries: %v", err)
	}
	want := [][2]int{{1, 1}, {1, 2}, {2, 1}}
	if len(eps) != len(want) {
		t.Fatalf("episodes: want %d, got %d", len(want), len(eps))
	}
	for i, k := range want {
		if eps[i].Season != k[0] || eps[i].Episode != k[1] {
			t.Fatalf("order[%d]: want %dx%d, got %dx%d", i, k[0], k[1], eps[i].Season, eps[i].Episode)
		}
	}
}
