package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/jwebster45206/haggle/pkg/shop"
)

// ErrShopNotFound is returned when a shop file does not exist.
var ErrShopNotFound = errors.New("shop not found")

// Storage combines session persistence with shop loading from the filesystem.
// Sessions are short-lived: implementations may expire them.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session operations. LoadSession returns (nil, nil) when the session does not exist.
	SaveSession(ctx context.Context, s *negotiation.Session) error
	LoadSession(ctx context.Context, id uuid.UUID) (*negotiation.Session, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// Shop operations (filesystem-backed)
	ListShops(ctx context.Context) (map[string]string, error)
	GetShop(ctx context.Context, filename string) (*shop.Shop, error)
}
