package domain

import "time"

// Series est créée la première fois qu'un épisode d'une série inconnue est
// ingéré. Les champs d'enrichissement (rating, popularity, studios, TMDBID)
// sont remplis une seule fois, à la création.
type Series struct {
	Slug        string
	Title       string
	Description string
	Poster      string
	Backdrop    string
	Year        int
	Genres      []string

	Rating     float64
	Popularity float64
	Studios    []string
	TMDBID     int

	CreatedAt time.Time
	UpdatedAt time.Time
}
