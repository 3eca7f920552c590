package app

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EpisodeCard est un candidat découvert sur la page d'accueil. Éphémère,
// jamais persisté tel quel.
type EpisodeCard struct {
	Title     string
	URL       string
	Thumbnail string
	Context   string
}

var (
	reContentPath = regexp.MustCompile(`(?i)/(episode|watch|anime|series)(/|$)`)
	reEpisodePath = regexp.MustCompile(`(?i)/episode(/|$)`)
)

// cardAncestors are the container shapes the homepage wraps its cards in.
const cardAncestors = "article, li, .item, .post, .card"

// ExtractCards scans every hyperlink of the homepage document, resolves it
// against baseURL and keeps same-origin links that look like content pages.
// Duplicate URLs are dropped, first occurrence wins. Title and thumbnail are
// best-effort.
func ExtractCards(html string, baseURL string) []EpisodeCard {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	var cards []EpisodeCard
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		u, err := base.Parse(href)
		if err != nil {
			return
		}
		u.Fragment = ""
		if u.Scheme != "http" && u.Scheme != "https" {
			return
		}
		if !strings.EqualFold(u.Host, base.Host) {
			return
		}
		if !reContentPath.MatchString(u.Path) {
			return
		}
		normalized := u.String()
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}

		cards = append(cards, EpisodeCard{
			Title:     cardTitle(a),
			URL:       normalized,
			Thumbnail: cardThumbnail(a, base),
			Context:   cardContext(a),
		})
	})
	return cards
}

// FilterEpisodes ne garde que les cartes pointant vers une page épisode
// (filtre plus strict que ExtractCards, qui admet aussi watch/anime/series
// pour le contexte).
func FilterEpisodes(cards []EpisodeCard) []EpisodeCard {
	out := make([]EpisodeCard, 0, len(cards))
	for _, c := range cards {
		u, err := url.Parse(c.URL)
		if err != nil {
			continue
		}
		if reEpisodePath.MatchString(u.Path) {
			out = append(out, c)
		}
	}
	return out
}

func cardTitle(a *goquery.Selection) string {
	if t := strings.TrimSpace(a.AttrOr("title", "")); t != "" {
		return t
	}
	if t := collapseSpaces(a.Text()); t != "" {
		return t
	}
	if h := nearestHeading(a); h != "" {
		return h
	}
	return "Untitled"
}

func cardThumbnail(a *goquery.Selection, base *url.URL) string {
	img := a.Find("img").First()
	if img.Length() == 0 {
		if card := a.Closest(cardAncestors); card.Length() > 0 {
			img = card.Find("img").First()
		}
	}
	if img.Length() == 0 {
		return ""
	}
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" {
		src = strings.TrimSpace(img.AttrOr("data-src", ""))
	}
	if src == "" {
		return ""
	}
	u, err := base.Parse(src)
	if err != nil {
		return ""
	}
	return u.String()
}

func cardContext(a *goquery.Selection) string {
	return nearestHeading(a)
}

func nearestHeading(a *goquery.Selection) string {
	anc := a.Closest("article, li, section, div")
	if anc.Length() == 0 {
		return ""
	}
	return collapseSpaces(anc.Find("h1, h2, h3, h4").First().Text())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
