package userpoolrepofakes

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/internal/utils"
	"github.com/jrsteele09/go-token-service/userpools"
)

var _ userpools.Repo = (*FakeUserPoolRepo)(nil)

type FakeUserPoolRepo struct {
	pools map[string]*userpools.UserPool
	lock  sync.RWMutex
}

func NewFakeUserPoolRepo() *FakeUserPoolRepo {
	return &FakeUserPoolRepo{
		pools: make(map[string]*userpools.UserPool),
	}
}

func (pr *FakeUserPoolRepo) Upsert(_ context.Context, pool *userpools.UserPool) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()
	if pool.ID == "" {
		pool.ID = uuid.New().String()
	}
	pr.pools[pool.ID] = pool
	return nil
}

func (pr *FakeUserPoolRepo) Delete(_ context.Context, poolID string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()
	delete(pr.pools, poolID)
	return nil
}

func (pr *FakeUserPoolRepo) Get(_ context.Context, poolID string) (*userpools.UserPool, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()
	pool, ok := pr.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("user pool %q: %w", poolID, apperrors.ErrNotFound)
	}
	return pool, nil
}

func (pr *FakeUserPoolRepo) List(_ context.Context, offset, limit int) ([]*userpools.UserPool, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	list := make([]*userpools.UserPool, 0, len(pr.pools))
	for _, v := range pr.pools {
		list = append(list, v)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})
	return utils.Page(list, offset, limit), nil
}
