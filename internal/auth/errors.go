package auth

import (
	"context"
	"errors"
)

var (
	// ErrOwnerMismatch indicates a resource belongs to a different owner.
	ErrOwnerMismatch = errors.New("owner mismatch")
	// ErrMissingOwner indicates the request carries no owner identity.
	ErrMissingOwner = errors.New("missing owner identity")
)

// RequireOwner returns the owner id bound to ctx.
func RequireOwner(ctx context.Context) (string, error) {
	ownerID := OwnerIDFromContext(ctx)
	if ownerID == "" {
		return "", ErrMissingOwner
	}
	return ownerID, nil
}
