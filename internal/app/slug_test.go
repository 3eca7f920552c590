package app

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Demon Slayer", "demon-slayer"},
		{"  Fullmetal  Alchemist: Brotherhood ", "fullmetal-alchemist-brotherhood"},
		{"Pokémon", "pokemon"},
		{"Dr. STONE", "dr-stone"},
		{"Re:Zero − Starting Life", "re-zero-starting-life"},
		{"Hell's Paradise", "hell-s-paradise"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Fatalf("Slugify(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestTitleFromSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"demon-slayer", "Demon Slayer"},
		{"one-piece", "One Piece"},
		{"-86-", "86"},
		{"", ""},
	}
	for _, c := range cases {
		if got := TitleFromSlug(c.in); got != c.want {
			t.Fatalf("TitleFromSlug(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestSanitizeTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Demon Slayer (Dub)", "Demon Slayer"},
		{"Frieren (TV) (Dub)", "Frieren"},
		{"My  Hero   Academia", "My Hero Academia"},
		{"Steins;Gate", "Steins;Gate"},
	}
	for _, c := range cases {
		if got := SanitizeTitle(c.in); got != c.want {
			t.Fatalf("SanitizeTitle(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

func TestSlugFromEpisodeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://site.example/episode/demon-slayer-2x5/", "demon-slayer"},
		{"https://site.example/episode/one-piece-1x1089", "one-piece"},
		{"https://site.example/episode/no-code-here/", "no-code-here"},
		{"https://site.example/episode/foo-1x1/?ref=home", "foo"},
	}
	for _, c := range cases {
		if got := slugFromEpisodeURL(c.in); got != c.want {
			t.Fatalf("slugFromEpisodeURL(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}
