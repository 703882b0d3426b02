package portfolio

import "errors"

var (
	// Line-level parse failures; recovered by skipping the offending line.
	ErrLineFormat    = errors.New("Invalid file format")
	ErrInvalidAmount = errors.New("Invalid amount value")
	ErrInvalidPrice  = errors.New("Invalid price value")

	// ErrPortfolioNotFound: no portfolio row for the user (registration
	// creates one, so this means an unknown user).
	ErrPortfolioNotFound = errors.New("Portfolio not found")

	// ErrVersionConflict: a concurrent writer saved the portfolio between
	// our load and save. Callers may reload and retry.
	ErrVersionConflict = errors.New("Portfolio was modified concurrently")

	// ErrFeedUnavailable: the external price feed could not be contacted or
	// returned an unusable payload. The portfolio is left untouched.
	ErrFeedUnavailable = errors.New("An error occurred while fetching coins from the price feed. Please try again later.")
)
