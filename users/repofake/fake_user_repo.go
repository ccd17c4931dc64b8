package fakeuserrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/internal/utils"
	"github.com/jrsteele09/go-token-service/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type userKey struct {
	poolID string
	value  string
}

type FakeUserRepo struct {
	users     map[userKey]*users.User
	usernames map[userKey]string // username to user id
	lock      sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:     make(map[userKey]*users.User),
		usernames: make(map[userKey]string),
	}
}

func (ur *FakeUserRepo) Upsert(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	key := userKey{user.UserPoolID, user.ID}
	if existing, ok := ur.users[key]; ok && existing.Username != user.Username {
		delete(ur.usernames, userKey{user.UserPoolID, existing.Username})
	}
	ur.users[key] = user.Clone()
	if user.Username != "" {
		ur.usernames[userKey{user.UserPoolID, user.Username}] = user.ID
	}
	return nil
}

func (ur *FakeUserRepo) Delete(_ context.Context, poolID, userID string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[userKey{poolID, userID}]
	if !ok {
		return fmt.Errorf("user %q: %w", userID, apperrors.ErrNotFound)
	}
	delete(ur.usernames, userKey{poolID, user.Username})
	delete(ur.users, userKey{poolID, userID})
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, poolID, userID string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, err := ur.get(poolID, userID)
	if err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, poolID, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernames[userKey{poolID, username}]
	if !ok {
		return nil, fmt.Errorf("username %q: %w", username, apperrors.ErrNotFound)
	}
	user, err := ur.get(poolID, id)
	if err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

func (ur *FakeUserRepo) List(_ context.Context, poolID string, offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0)
	for k, v := range ur.users {
		if k.poolID != poolID {
			continue
		}
		userList = append(userList, v.Clone())
	}

	sort.Slice(userList, func(i, j int) bool {
		return userList[i].ID < userList[j].ID
	})

	return utils.Page(userList, offset, limit), nil
}

func (ur *FakeUserRepo) SetEnabled(_ context.Context, poolID, userID string, enabled bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, err := ur.get(poolID, userID)
	if err != nil {
		return err
	}
	user.Enabled = enabled
	return nil
}

// get returns the stored user and expects the lock to be held. Callers
// outside the lock receive a Clone.
func (ur *FakeUserRepo) get(poolID, userID string) (*users.User, error) {
	user, ok := ur.users[userKey{poolID, userID}]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", userID, apperrors.ErrNotFound)
	}
	return user, nil
}
