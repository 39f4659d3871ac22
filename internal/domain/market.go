package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstream is returned when a market data provider fails or is unreachable.
	ErrUpstream = errors.New("upstream error")
	// ErrSymbolRequired is returned when an operation needs a symbol and none was given.
	ErrSymbolRequired = errors.New("symbol required")
	// ErrSymbolNotFound is returned when a symbol has no provider identifier.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrInvalidLimit is returned for listing limits outside the accepted range.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidDays is returned for history windows outside the accepted range.
	ErrInvalidDays = errors.New("invalid days")
)

// UpstreamError describes a failed provider call. It unwraps to ErrUpstream.
type UpstreamError struct {
	Provider   string
	Path       string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d", e.Provider, e.Path, e.StatusCode)
	}

	return fmt.Sprintf("%s %s: %v", e.Provider, e.Path, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}

	return []error{ErrUpstream, e.Err}
}

// Coin is one entry of the history provider's asset list.
type Coin struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ResolveResponse maps a ticker symbol to the history provider's identifier.
type ResolveResponse struct {
	Symbol string `json:"symbol"`
	ID     string `json:"id"`
}
