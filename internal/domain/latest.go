package domain

import "time"

// LatestEpisode est une entrée de la fenêtre "derniers épisodes", bornée à N
// entrées triées par AddedAt décroissant. Même clé naturelle qu'Episode.
type LatestEpisode struct {
	SeriesSlug   string
	SeriesTitle  string
	Season       int
	Episode      int
	EpisodeTitle string
	Thumbnail    string
	AddedAt      time.Time
}
