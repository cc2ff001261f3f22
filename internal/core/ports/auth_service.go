package ports

import (
	"context"

	"github.com/pingloop/messenger/internal/core/domain"
)

// AuthService implements account registration and login. The issued token
// carries the caller identity consumed by every other operation.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
