package users

import "context"

// UserRepo stores users. Lookups return an error wrapping errors.ErrNotFound for
// unknown users.
type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, poolID, userID string) error
	GetByID(ctx context.Context, poolID, userID string) (*User, error)
	GetByUsername(ctx context.Context, poolID, username string) (*User, error)
	List(ctx context.Context, poolID string, offset, limit int) ([]*User, error)
	SetEnabled(ctx context.Context, poolID, userID string, enabled bool) error
}
