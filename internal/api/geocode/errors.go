package geocode

import (
	"errors"

	"github.com/FACorreiaa/go-city-forecast/app/observability/metrics"
)

var (
	// ErrCityNotFound means the provider answered but had no candidates for the name.
	ErrCityNotFound = errors.New("city not found")
	// ErrProviderUnavailable covers transport failures, timeouts, non-2xx and malformed bodies.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
	// ErrStoreUnavailable means the cache could not be read; the provider is not consulted.
	ErrStoreUnavailable = errors.New("coordinate store unavailable")
	// ErrStoreWriteFailed never reaches callers of Resolve. It is logged and counted.
	ErrStoreWriteFailed = errors.New("coordinate store write failed")
	// ErrCityExists is returned by Put when another request already cached the name.
	ErrCityExists = errors.New("city already cached")
)

// Outcome maps a Resolve error to the label used in logs and metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeHit
	case errors.Is(err, ErrCityNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return metrics.OutcomeStoreError
	default:
		return metrics.OutcomeProviderError
	}
}
