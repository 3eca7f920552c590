package app

import (
	"errors"

	"github.com/himanshusaroha648/lastanime-backend/internal/ports"
)

var ErrNotFound = ports.ErrNotFound

// ErrFetchExhausted signals that a fetch burned its whole attempt budget.
// It is always wrapped together with the last underlying attempt error.
var ErrFetchExhausted = errors.New("fetch exhausted")

// ErrNoEpisodeCode: the URL carries no <digits>x<digits> code. Permanent for
// this card occurrence; the card is re-evaluated if it shows up again.
var ErrNoEpisodeCode = errors.New("no episode code in url")

// ErrUnresolvableSeries: no strategy of the fallback chain produced a series
// identity for a detail page.
var ErrUnresolvableSeries = errors.New("unresolvable series")
