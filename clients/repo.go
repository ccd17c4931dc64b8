package clients

import "context"

// Repo stores app client registrations. Get returns an error wrapping
// errors.ErrNotFound when no registration exists for the client ID.
type Repo interface {
	Upsert(ctx context.Context, client *Client) error
	Delete(ctx context.Context, clientID string) error
	Get(ctx context.Context, clientID string) (*Client, error)
	List(ctx context.Context, offset, limit int) ([]*Client, error)
}
