package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func newTestResolver(t *testing.T, pages map[string]string) (*DetailResolver, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(ts.Close)

	fetch := NewFetcher(zerolog.Nop(), NewProxyPool(zerolog.Nop(), nil), "", 0, 1, 0)
	return NewDetailResolver(zerolog.Nop(), fetch), ts
}

func TestResolveEpisode_BreadcrumbIdentity(t *testing.T) {
	resolver, ts := newTestResolver(t, map[string]string{
		"/episode/demon-slayer-2x5/": `
			<html><head><meta property="og:image" content="/img/fallback.jpg"></head><body>
			<ol class="breadcrumb">
				<li><a href="/">Home</a></li>
				<li><a href="/series/demon-slayer/">Demon Slayer (Dub)</a></li>
			</ol>
			<div id="options-1"><iframe src="https://embed.example/e/abc"></iframe></div>
			</body></html>`,
	})

	card := EpisodeCard{URL: ts.URL + "/episode/demon-slayer-2x5/", Title: "Demon Slayer 2x5"}
	got, err := resolver.ResolveEpisode(context.Background(), card, EpisodeCode{2, 5})
	if err != nil {
		t.Fatalf("ResolveEpisode: %v", err)
	}
	if got.Series.Slug != "demon-slayer" {
		t.Fatalf("slug: want %q, got %q", "demon-slayer", got.Series.Slug)
	}
	if got.Series.Title != "Demon Slayer" {
		t.Fatalf("title: want %q, got %q", "Demon Slayer", got.Series.Title)
	}
	if got.SeriesURL != ts.URL+"/series/demon-slayer/" {
		t.Fatalf("series url: got %q", got.SeriesURL)
	}
	if got.Episode.Season != 2 || got.Episode.Episode != 5 {
		t.Fatalf("code: got %dx%d", got.Episode.Season, got.Episode.Episode)
	}
}

func TestResolveEpisode_SecondaryBreadcrumb(t *testing.T) {
	resolver, ts := newTestResolver(t, map[string]string{
		"/episode/frieren-1x3/": `
			<html><body>
			<div class="breadcrumbs">
				<a href="/">Home</a>
				<a href="/anime/frieren/">Frieren</a>
			</div>
			</body></html>`,
	})

	card := EpisodeCard{URL: ts.URL + "/episode/frieren-1x3/"}
	got, err := resolver.ResolveEpisode(context.Background(), card, EpisodeCode{1, 3})
	if err != nil {
		t.Fatalf("ResolveEpisode: %v", err)
	}
	if got.Series.Slug != "frieren" || got.Series.Title != "Frieren" {
		t.Fatalf("identity: got %+v", got.Series)
	}
}

func TestResolveEpisode_URLFallback(t *testing.T) {
	resolver, ts := newTestResolver(t, map[string]string{
		"/episode/demon-slayer-2x5/": `<html><body><p>No breadcrumbs here.</p></body></html>`,
	})

	card := EpisodeCard{URL: ts.URL + "/episode/demon-slayer-2x5/"}
	got, err := resolver.ResolveEpisode(context.Background(), card, EpisodeCode{2, 5})
	if err != nil {
		t.Fatalf("ResolveEpisode: %v", err)
	}
	if got.Series.Slug != "demon-slayer" {
		t.Fatalf("slug: want %q, got %q", "demon-slayer", got.Series.Slug)
	}
	if got.Series.Title != "Demon Slayer" {
		t.Fatalf("title: want %q, got %q", "Demon Slayer", got.Series.Title)
	}
	// Untitled card title is replaced by a synthesized one.
	if got.Episode.Title != "Demon Slayer 2x5" {
		t.Fatalf("episode title: got %q", got.Episode.Title)
	}
}

func TestResolveEpisode_OGTitleFallback(t *testing.T) {
	resolver, ts := newTestResolver(t, map[string]string{
		"/": `
			<html><head>
			<meta property="og:title" content="Frieren | Watch Online">
			</head><body></body></html>`,
	})

	card := EpisodeCard{URL: ts.URL + "/"}
	got, err := resolver.ResolveEpisode(context.Background(), card, EpisodeCode{1, 1})
	if err != nil {
		t.Fatalf("ResolveEpisode: %v", err)
	}
	if got.Series.Title != "Frieren" || got.Series.Slug != "frieren" {
		t.Fatalf("identity: got %+v", got.Series)
	}
}

func TestResolveEpisode_Unresolvable(t *testing.T) {
	resolver, ts := newTestResolver(t, map[string]string{
		"/": `<html><body>nothing</body></html>`,
	})

	card := EpisodeCard{URL: ts.URL + "/"}
	_, err := resolver.ResolveEpisode(context.Background(), card, EpisodeCode{1, 1})
	if !errors.Is(err, ErrUnresolvableSeries) {
		t.Fatalf("want ErrUnresolvableSeries, got %v", err)
	}
}

func TestResolveEpisode_Servers(t *testing.T) {
	resolver, ts := newTestResolver(t, map[string]string{
		"/episode/foo-1x1/": `
			<html><body>
			<div id="options-1"><iframe src="https://embed.example/e/one"></iframe></div>
			<div id="options-2">
				<iframe src="https://embed.example/e/two"></iframe>
				<iframe src="https://embed.example/e/three"></iframe>
			</div>
			<div class="extra"><iframe src="/local/player"></iframe></div>
			<div id="options-1-copy"><iframe src="https://embed.example/e/one"></iframe></div>
			</body></html>`,
	})

	card := EpisodeCard{URL: ts.URL + "/episode/foo-1x1/"}
	got, err := resolver.ResolveEpisode(context.Background(), card, EpisodeCode{1, 1})
	if err != nil {
		t.Fatalf("ResolveEpisode: %v", err)
	}

	servers := got.Episode.Servers
	if len(servers) != 4 {
		t.Fatalf("servers: want 4, got %d (%+v)", len(servers), servers)
	}
	if servers[0].Option == nil || *servers[0].Option != 1 || servers[0].URL != "https://embed.example/e/one" {
		t.Fatalf("server[0]: got %+v", servers[0])
	}
	if servers[1].Option == nil || *servers[1].Option != 2 || servers[1].URL != "https://embed.example/e/two" {
		t.Fatalf("server[1]: got %+v", servers[1])
	}
	if servers[2].Option == nil || *servers[2].Option != 2 || servers[2].URL != "https://embed.example/e/three" {
		t.Fatalf("server[2]: got %+v", servers[2])
	}
	// The stray iframe comes from the supplementary pass, untagged.
	if servers[3].Option != nil || servers[3].URL != ts.URL+"/local/player" {
		t.Fatalf("server[3]: got %+v", servers[3])
	}
}

func TestResolveEpisode_ThumbnailPriority(t *testing.T) {
	resolver, ts := newTestResolver(t, map[string]string{
		"/episode/a-1x1/": `
			<html><head><meta property="og:image" content="/img/og.jpg"></head><body>
			<ol class="breadcrumb"><a href="/series/a/">A</a></ol>
			<div class="video-options"><img src="/img/options.jpg"></div>
			<div class="post-thumbnail"><img src="/img/post.jpg"></div>
			</body></html>`,
		"/episode/b-1x1/": `
			<html><head><meta property="og:image" content="/img/og.jpg"></head><body>
			<ol class="breadcrumb"><a href="/series/b/">B</a></ol>
			<div class="post-thumbnail"><img src="/img/post.jpg"></div>
			</body></html>`,
		"/episode/c-1x1/": `
			<html><head><meta property="og:image" content="/img/og.jpg"></head><body>
			<ol class="breadcrumb"><a href="/series/c/">C</a></ol>
			</body></html>`,
	})

	cases := []struct {
		path string
		want string
	}{
		{"/episode/a-1x1/", "/img/options.jpg"},
		{"/episode/b-1x1/", "/img/post.jpg"},
		{"/episode/c-1x1/", "/img/og.jpg"},
	}
	for _, c := range cases {
		got, err := resolver.ResolveEpisode(context.Background(), EpisodeCard{URL: ts.URL + c.path}, EpisodeCode{1, 1})
		if err != nil {
			t.Fatalf("ResolveEpisode(%s): %v", c.path, err)
		}
		if got.Episode.Thumbnail != ts.URL+c.want {
			t.Fatalf("thumbnail(%s): want %q, got %q", c.path, ts.URL+c.want, got.Episode.Thumbnail)
		}
	}
}
