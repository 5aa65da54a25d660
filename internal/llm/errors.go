package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// ErrorClass partitions provider failures into the categories the pipeline
// acts on: transient errors are retried, capacity and model-not-found errors
// trigger primary→fallback substitution, permanent errors surface directly,
// and cancellation is never rendered to the user.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassTransient
	ClassPermanent
	ClassCancelled
	ClassCapacity
	ClassModelNotFound
	ClassAuth
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassPermanent:
		return "permanent"
	case ClassCancelled:
		return "cancelled"
	case ClassCapacity:
		return "capacity"
	case ClassModelNotFound:
		return "model_not_found"
	case ClassAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// ProviderError wraps a provider failure with its classification.
type ProviderError struct {
	Provider string
	Class    ErrorClass
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Class, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// WrapError classifies err and wraps it with the provider name.
// Cancellation is preserved unwrapped so errors.Is(err, context.Canceled)
// keeps working at call sites.
func WrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &ProviderError{
		Provider: provider,
		Class:    Classify(err),
		Err:      err,
	}
}

// Classify determines the error class for a provider failure.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassUnknown
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassCancelled
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Class
	}

	if code, ok := statusCode(err); ok {
		return classifyStatus(code)
	}

	// No structured status available; fall back to message heuristics the
	// way transient-network detection does elsewhere in the pipeline.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "quota"),
		strings.Contains(msg, "overloaded"), strings.Contains(msg, "resource exhausted"):
		return ClassCapacity
	case strings.Contains(msg, "not found") && strings.Contains(msg, "model"):
		return ClassModelNotFound
	case strings.Contains(msg, "api key"), strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "permission"):
		return ClassAuth
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"), strings.Contains(msg, "unavailable"):
		return ClassTransient
	default:
		return ClassUnknown
	}
}

// ShouldFallback reports whether a primary-provider failure warrants one
// retry against the fallback provider. Auth/validation errors never do.
func ShouldFallback(err error) bool {
	switch Classify(err) {
	case ClassCapacity, ClassModelNotFound:
		return true
	default:
		return false
	}
}

func statusCode(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code, true
	}
	return 0, false
}

func classifyStatus(code int) ErrorClass {
	switch {
	case code == 429, code == 503:
		return ClassCapacity
	case code == 404:
		return ClassModelNotFound
	case code == 401, code == 403:
		return ClassAuth
	case code >= 500:
		return ClassTransient
	case code >= 400:
		return ClassPermanent
	default:
		return ClassUnknown
	}
}
