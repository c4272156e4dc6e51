package pipeline

import (
	"context"
	"errors"
	"net"

	"drafted/internal/domain"
	"drafted/internal/providers/genai"
)

// HTTP statuses worth another attempt: rate limits, conflicts and
// upstream availability blips.
var transientHTTPStatus = map[int]bool{
	408: true, 409: true, 425: true, 429: true,
	500: true, 502: true, 503: true, 504: true,
}

// Classify maps a pipeline error onto the failure taxonomy and reports
// whether the attempt may be retried.
func Classify(err error) (domain.FailureCode, bool) {
	var providerErr *genai.ProviderHTTPError
	if errors.As(err, &providerErr) {
		if transientHTTPStatus[providerErr.Status] {
			return domain.FailureProviderTransient, true
		}
		return domain.FailureProviderPermanent, false
	}
	if domain.IsValidationError(err) {
		return domain.FailureValidation, false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.FailureProviderTransient, true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.FailureProviderTransient, true
	}
	return domain.FailureSystem, false
}
