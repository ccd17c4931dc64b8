package refreshrepofake

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.StoredRefreshToken
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(_ context.Context, refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[refreshToken.TokenHash] = refreshToken
	return nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, tokenHash string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	delete(tr.tokens, tokenHash)
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, tokenHash string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	rt, ok := tr.tokens[tokenHash]
	if !ok {
		return nil, fmt.Errorf("refresh token: %w", apperrors.ErrNotFound)
	}
	return rt, nil
}

// Len returns the number of stored tokens
func (tr *FakeRefreshTokenRepo) Len() int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	return len(tr.tokens)
}
