package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// ValidationError reports data that would produce an invalid order.
type ValidationError struct {
	Problems  []string
	LineItems []string
}

func (e *ValidationError) Error() string {
	msg := "validation failed: " + strings.Join(e.Problems, "; ")
	if len(e.LineItems) > 0 {
		msg += " (line items: " + strings.Join(e.LineItems, ", ") + ")"
	}
	return msg
}

// Add records a problem.
func (e *ValidationError) Add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// AddLine records a problem with a specific line item.
func (e *ValidationError) AddLine(productID, format string, args ...any) {
	e.LineItems = append(e.LineItems, productID)
	e.Add(format, args...)
}

// OrNil returns e when it holds problems and nil otherwise.
func (e *ValidationError) OrNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// NotFoundError reports a missing order or product.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NetworkError reports an unreachable order API or a non-2xx response.
type NetworkError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Accepted reports whether the server answered 2xx, meaning the request took
// effect even though its response could not be used.
func (e *NetworkError) Accepted() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}
