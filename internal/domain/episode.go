package domain

import (
	"fmt"
	"time"
)

// Server est une source d'embed vidéo. Option correspond au conteneur
// numéroté de la page ("option 1", "option 2", ...); nil pour les iframes
// ramassées hors conteneur numéroté.
type Server struct {
	Option *int
	URL    string
}

// Episode a pour clé naturelle (SeriesSlug, Season, Episode).
type Episode struct {
	SeriesSlug string
	Season     int
	Episode    int
	Title      string
	Thumbnail  string
	Servers    []Server

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Key rend la clé naturelle sous forme "slug-SxE".
func (e Episode) Key() string {
	return fmt.Sprintf("%s-%dx%d", e.SeriesSlug, e.Season, e.Episode)
}
