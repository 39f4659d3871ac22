package authclient

import "context"

// AuthClient defines the interface for validating session tokens.
type AuthClient interface {
	// Validate checks if the given token is valid.
	// Returns the user ID carried by the token, whether the token is valid,
	// and any error encountered during validation.
	Validate(ctx context.Context, token string) (int64, bool, error)
}

// Func adapts a plain function to AuthClient.
type Func func(ctx context.Context, token string) (int64, bool, error)

// Validate implements AuthClient.
func (f Func) Validate(ctx context.Context, token string) (int64, bool, error) {
	return f(ctx, token)
}
