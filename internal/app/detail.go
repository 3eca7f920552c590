package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/himanshusaroha648/lastanime-backend/internal/domain"
)

// SeriesIdentity est l'identité canonique résolue pour la série d'un épisode.
type SeriesIdentity struct {
	Title string
	Slug  string
}

// ResolvedEpisode regroupe le résultat d'une résolution de page détail.
type ResolvedEpisode struct {
	Episode   domain.Episode
	Series    SeriesIdentity
	SeriesURL string
}

// identityStrategy tente d'extraire l'identité série d'un document. Les
// stratégies sont essayées dans l'ordre de confiance: breadcrumbs d'abord,
// dérivation URL ensuite, meta og:title en dernier recours.
type identityStrategy func(doc *goquery.Document, base *url.URL) (SeriesIdentity, string, bool)

// maxServerOptions borne l'itération des conteneurs "option N" de la page.
const maxServerOptions = 6

type DetailResolver struct {
	logger zerolog.Logger
	fetch  *Fetcher
}

func NewDetailResolver(logger zerolog.Logger, fetch *Fetcher) *DetailResolver {
	return &DetailResolver{logger: logger, fetch: fetch}
}

// ResolveEpisode récupère la page détail et compose l'Episode: identité série
// via la chaîne de stratégies, thumbnail par priorité, serveurs embed.
func (r *DetailResolver) ResolveEpisode(ctx context.Context, card EpisodeCard, code EpisodeCode) (ResolvedEpisode, error) {
	html, err := r.fetch.FetchHTML(ctx, card.URL)
	if err != nil {
		return ResolvedEpisode{}, err
	}

	pageURL, err := url.Parse(card.URL)
	if err != nil {
		return ResolvedEpisode{}, fmt.Errorf("invalid episode url %q: %w", card.URL, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ResolvedEpisode{}, fmt.Errorf("parse detail page: %w", err)
	}

	identity, seriesURL := resolveIdentity(doc, pageURL)
	if identity.Title == "" {
		// Dernier recours: og:title avant son premier séparateur.
		if t := ogTitle(doc); t != "" {
			identity.Title = t
			if identity.Slug == "" {
				identity.Slug = Slugify(t)
			}
		}
	}
	identity.Title = SanitizeTitle(identity.Title)
	if identity.Slug == "" || identity.Title == "" {
		return ResolvedEpisode{}, fmt.Errorf("%w: %s", ErrUnresolvableSeries, card.URL)
	}
	if seriesURL == "" {
		seriesURL = (&url.URL{Scheme: pageURL.Scheme, Host: pageURL.Host, Path: "/series/" + identity.Slug + "/"}).String()
	}

	title := strings.TrimSpace(card.Title)
	if title == "" || title == "Untitled" {
		title = fmt.Sprintf("%s %dx%d", identity.Title, code.Season, code.Episode)
	}

	ep := domain.Episode{
		SeriesSlug: identity.Slug,
		Season:     code.Season,
		Episode:    code.Episode,
		Title:      title,
		Thumbnail:  resolveThumbnail(doc, pageURL),
		Servers:    collectServers(doc, pageURL),
	}
	if ep.Thumbnail == "" {
		ep.Thumbnail = card.Thumbnail
	}
	return ResolvedEpisode{Episode: ep, Series: identity, SeriesURL: seriesURL}, nil
}

func resolveIdentity(doc *goquery.Document, pageURL *url.URL) (SeriesIdentity, string) {
	strategies := []identityStrategy{
		breadcrumbIdentity("ol.breadcrumb a, nav.breadcrumb a"),
		breadcrumbIdentity(".breadcrumbs a, .breadcrumb_nav a"),
		urlIdentity,
	}
	for _, strategy := range strategies {
		if id, seriesURL, ok := strategy(doc, pageURL); ok {
			return id, seriesURL
		}
	}
	return SeriesIdentity{}, ""
}

// breadcrumbIdentity cherche dans un conteneur de fil d'Ariane un lien vers
// une page série et en tire titre + slug.
func breadcrumbIdentity(selector string) identityStrategy {
	return func(doc *goquery.Document, base *url.URL) (SeriesIdentity, string, bool) {
		var id SeriesIdentity
		var seriesURL string
		doc.Find(selector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if href == "" {
				return true
			}
			u, err := base.Parse(href)
			if err != nil {
				return true
			}
			if !strings.Contains(u.Path, "/series/") && !strings.Contains(u.Path, "/anime/") {
				return true
			}
			title := collapseSpaces(a.Text())
			slug := lastPathSegment(u.Path)
			if title == "" || slug == "" {
				return true
			}
			id = SeriesIdentity{Title: title, Slug: slug}
			seriesURL = u.String()
			return false
		})
		return id, seriesURL, id.Title != "" && id.Slug != ""
	}
}

// urlIdentity dérive le slug du dernier segment de chemin (suffixe -SxE
// retiré) et synthétise un titre lisible.
func urlIdentity(_ *goquery.Document, pageURL *url.URL) (SeriesIdentity, string, bool) {
	slug := slugFromEpisodeURL(pageURL.Path)
	if slug == "" {
		return SeriesIdentity{}, "", false
	}
	return SeriesIdentity{Title: TitleFromSlug(slug), Slug: slug}, "", true
}

var ogTitleSeparators = []string{" | ", " - ", " – ", " — "}

func ogTitle(doc *goquery.Document) string {
	content := strings.TrimSpace(doc.Find(`meta[property="og:title"]`).First().AttrOr("content", ""))
	if content == "" {
		return ""
	}
	for _, sep := range ogTitleSeparators {
		if i := strings.Index(content, sep); i >= 0 {
			content = content[:i]
			break
		}
	}
	return collapseSpaces(content)
}

// resolveThumbnail suit la priorité: image de la zone options vidéo, puis
// post-thumbnail, puis og:image.
func resolveThumbnail(doc *goquery.Document, base *url.URL) string {
	for _, selector := range []string{".video-options img", ".post-thumbnail img"} {
		img := doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		src := strings.TrimSpace(img.AttrOr("src", ""))
		if src == "" {
			src = strings.TrimSpace(img.AttrOr("data-src", ""))
		}
		if src == "" {
			continue
		}
		if u, err := base.Parse(src); err == nil {
			return u.String()
		}
	}
	if content := strings.TrimSpace(doc.Find(`meta[property="og:image"]`).First().AttrOr("content", "")); content != "" {
		if u, err := base.Parse(content); err == nil {
			return u.String()
		}
	}
	return ""
}

// collectServers ramasse les iframes des conteneurs numérotés #options-N puis,
// en passe complémentaire, toute iframe restante de la page (option nil),
// dédupliquée par URL résolue.
func collectServers(doc *goquery.Document, base *url.URL) []domain.Server {
	seen := map[string]struct{}{}
	var servers []domain.Server

	add := func(src string, option *int) {
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}
		u, err := base.Parse(src)
		if err != nil {
			return
		}
		resolved := u.String()
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		servers = append(servers, domain.Server{Option: option, URL: resolved})
	}

	for i := 1; i <= maxServerOptions; i++ {
		option := i
		doc.Find(fmt.Sprintf("#options-%d iframe", i)).Each(func(_ int, f *goquery.Selection) {
			add(f.AttrOr("src", f.AttrOr("data-src", "")), &option)
		})
	}
	doc.Find("iframe").Each(func(_ int, f *goquery.Selection) {
		add(f.AttrOr("src", f.AttrOr("data-src", "")), nil)
	})
	return servers
}
