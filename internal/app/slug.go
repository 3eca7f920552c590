package app

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reSlugHyphens = regexp.MustCompile(`-+`)
	reParenSuffix = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	reCodeSuffix  = regexp.MustCompile(`(?i)-\d+x\d+$`)
)

// Slugify normalise un titre en slug: minuscules, accents retirés
// (NFD -> remove Mn -> NFC), ponctuation remplacée, [a-z0-9-] uniquement.
func Slugify(title string) string {
	s := strings.TrimSpace(strings.ToLower(title))
	if s == "" {
		return ""
	}

	tr := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(tr, s); err == nil {
		s = out
	}

	replacer := strings.NewReplacer("'", " ", "/", " ", ":", " ", "+", " ", "&", " ", ".", " ", ",", " ", "!", " ", "?", " ")
	s = replacer.Replace(s)

	b := strings.Builder{}
	b.Grow(len(s))
	for _, ch := range s {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch == ' ' || ch == '-' || ch == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(reSlugHyphens.ReplaceAllString(b.String(), "-"), "-")
}

// TitleFromSlug synthétise un titre lisible depuis un slug: mots séparés par
// des tirets, chacun passé en title-case.
func TitleFromSlug(slug string) string {
	words := strings.Split(strings.Trim(slug, "-"), "-")
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		out = append(out, string(r))
	}
	return strings.Join(out, " ")
}

// SanitizeTitle retire les suffixes parenthésés ("(Dub)", "(TV)", ...) et
// recompacte les espaces.
func SanitizeTitle(title string) string {
	t := title
	for {
		next := reParenSuffix.ReplaceAllString(t, "")
		if next == t {
			break
		}
		t = next
	}
	return strings.Join(strings.Fields(t), " ")
}

// slugFromEpisodeURL dérive le slug série du dernier segment de chemin, en
// retirant le suffixe -SxE ("demon-slayer-2x5" -> "demon-slayer").
func slugFromEpisodeURL(rawURL string) string {
	seg := lastPathSegment(rawURL)
	return strings.Trim(reCodeSuffix.ReplaceAllString(seg, ""), "-")
}

func lastPathSegment(rawURL string) string {
	s := rawURL
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return s
}
