package auth

import (
	"context"

	"github.com/google/uuid"

	commonErrors "github.com/Alturino/shop/internal/common/errors"
)

type userIDKey struct{}

func AttachUserIDToContext(c context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(c, userIDKey{}, userID)
}

// UserIDFromContext returns the identity set by the auth middleware.
func UserIDFromContext(c context.Context) (uuid.UUID, error) {
	userID, ok := c.Value(userIDKey{}).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, commonErrors.ErrUnauthorized
	}
	return userID, nil
}
