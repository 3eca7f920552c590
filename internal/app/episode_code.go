package app

import (
	"regexp"
	"strconv"
)

var reEpisodeCode = regexp.MustCompile(`(?i)(\d+)x(\d+)`)

// EpisodeCode est la paire (saison, épisode) encodée dans une URL sous la
// forme <digits>x<digits>.
type EpisodeCode struct {
	Season  int
	Episode int
}

// ParseEpisodeCode extrait la première occurrence <digits>x<digits> de l'URL.
// ok=false quand elle est absente: la carte est ignorée pour ce cycle et sera
// réévaluée au suivant si elle réapparaît.
func ParseEpisodeCode(rawURL string) (EpisodeCode, bool) {
	m := reEpisodeCode.FindStringSubmatch(rawURL)
	if m == nil {
		return EpisodeCode{}, false
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return EpisodeCode{}, false
	}
	episode, err := strconv.Atoi(m[2])
	if err != nil {
		return EpisodeCode{}, false
	}
	if season <= 0 || episode <= 0 {
		return EpisodeCode{}, false
	}
	return EpisodeCode{Season: season, Episode: episode}, true
}
