package domain

import "errors"

var (
	ErrScenarioNotFound       = errors.New("scenario not found")
	ErrScenarioExists         = errors.New("scenario already exists")
	ErrForbidden              = errors.New("forbidden")
	ErrRecommendationNotFound = errors.New("recommendation not found")
	ErrInvalidScenario        = errors.New("invalid scenario")
)

// ErrUnknownQCIClass is returned for a what-if QCI label outside the table.
var ErrUnknownQCIClass = errors.New("unknown QCI class")
