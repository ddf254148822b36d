package scoreboarddb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")

	// ErrInvalidAmount rejects non-positive ledger adjustments.
	ErrInvalidAmount = errors.New("amount must be positive")
)
