package reliability

import (
	"errors"
	"time"

	"github.com/ent0n29/planpilot/internal/llm"
)

// The model gateway never retries on its own; these helpers implement the
// caller-side policy for transports that choose to retry.

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// IsRetryableGatewayError classifies gateway failures worth retrying.
// Auth and malformed-payload failures will not improve on retry.
func IsRetryableGatewayError(err error) bool {
	var ge *llm.GatewayError
	if !errors.As(err, &ge) {
		return false
	}
	switch ge.Code {
	case llm.CodeRateLimited, llm.CodeNetwork, llm.CodeUpstream:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
