package userpools_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/userpools"
	userpoolrepofakes "github.com/jrsteele09/go-token-service/userpools/repofakes"
	"github.com/stretchr/testify/require"
)

func TestExpiryOverrides(t *testing.T) {
	pool := &userpools.UserPool{ID: "p1"}
	require.Equal(t, time.Hour, pool.GetAccessTokenExpiry(time.Hour))
	require.Equal(t, 24*time.Hour, pool.GetRefreshTokenExpiry(24*time.Hour))

	pool.AccessTokenExpiry = 5 * time.Minute
	pool.RefreshTokenExpiry = time.Hour
	require.Equal(t, 5*time.Minute, pool.GetAccessTokenExpiry(time.Hour))
	require.Equal(t, time.Hour, pool.GetRefreshTokenExpiry(24*time.Hour))
}

func TestFakeUserPoolRepo(t *testing.T) {
	ctx := context.Background()
	repo := userpoolrepofakes.NewFakeUserPoolRepo()

	require.NoError(t, repo.Upsert(ctx, &userpools.UserPool{ID: "p1", Name: "Pool 1"}))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Pool 1", got.Name)

	_, err = repo.Get(ctx, "p2")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	list, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.Get(ctx, "p1")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
