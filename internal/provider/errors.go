package provider

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes carried by ProviderError
const (
	CodeAuthFailed  = "AUTH_FAILED"
	CodeRateLimited = "RATE_LIMITED"
	CodeUnavailable = "UNAVAILABLE"
	CodeNotFound    = "NOT_FOUND"
	CodeUnknown     = "UNKNOWN"
)

// FallbackMessage is shown when neither the provider nor the transport gave a reason
const FallbackMessage = "Failed to fetch movies. Check your network or API key."

var ErrNoSource = errors.New("no usable movie source")

// ProviderError represents an error from a provider
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	Retry      bool
	RetryAfter int // Seconds to wait before retry
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return FallbackMessage
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ConfigError is returned when a provider path is invoked explicitly without
// its credential.
type ConfigError struct {
	Provider string
	Variable string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s API key missing. Set %s in the environment or config file", strings.ToUpper(e.Provider), e.Variable)
}

// Message resolves any error to the text shown to the user: the provider's
// own status message, else the transport error, else FallbackMessage.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var perr *ProviderError
	if errors.As(err, &perr) {
		if msg := strings.TrimSpace(perr.Message); msg != "" {
			return msg
		}
		if perr.Err != nil {
			if msg := strings.TrimSpace(perr.Err.Error()); msg != "" {
				return msg
			}
		}
		return FallbackMessage
	}

	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackMessage
}
