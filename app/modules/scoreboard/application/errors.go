package scoreboardservice

import "errors"

var (
	// ErrScoreboardExists is returned when a channel already has a scoreboard.
	ErrScoreboardExists = errors.New("channel already has a scoreboard")

	// ErrScoreboardNotFound is returned when a channel has no scoreboard.
	ErrScoreboardNotFound = errors.New("channel has no scoreboard")

	// ErrNoQuotes is returned when a channel has no attributed quote to offer.
	ErrNoQuotes = errors.New("channel has no quotes")

	// ErrNoHistory is returned by SetupScoreboard when no history reader is
	// configured.
	ErrNoHistory = errors.New("channel history is not available")
)
