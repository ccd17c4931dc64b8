package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-token-service/auth"
	"github.com/jrsteele09/go-token-service/clients"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/oauth2"
	"github.com/jrsteele09/go-token-service/token"
	"github.com/jrsteele09/go-token-service/users"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "test-client-1"
	testClientSecret = "S"
	testRefreshToken = "valid-refresh-token"
	testExpiresIn    = time.Hour
)

var errStoreUnavailable = errors.New("store unavailable")

type testFixture struct {
	directory *stubDirectory
	pool      *stubPool
	generator *stubGenerator
	service   *auth.TokenService
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	pool := &stubPool{
		refreshToken: testRefreshToken,
		user:         &users.User{ID: "user-1", Username: "alice", Enabled: true},
		groups:       []string{"admins", "users"},
	}
	directory := &stubDirectory{
		pool:   pool,
		client: defaultTestClient(),
	}
	generator := &stubGenerator{}

	service, err := auth.NewTokenService(directory, generator)
	require.NoError(t, err)

	return &testFixture{
		directory: directory,
		pool:      pool,
		generator: generator,
		service:   service,
	}
}

func defaultTestClient() *clients.Client {
	return &clients.Client{
		ID:         testClientID,
		UserPoolID: "pool-1",
		Secret:     testClientSecret,
		Scopes:     []string{"openid"},
	}
}

func clientCredentialsParams(clientID string, secret *string) url.Values {
	params := url.Values{
		oauth2.ParamGrantType: {string(oauth2.ClientCredentialsGrant)},
		oauth2.ParamClientID:  {clientID},
	}
	if secret != nil {
		params.Set(oauth2.ParamClientSecret, *secret)
	}
	return params
}

func refreshTokenParams(clientID, refreshToken string) url.Values {
	return url.Values{
		oauth2.ParamGrantType:    {string(oauth2.RefreshTokenGrant)},
		oauth2.ParamClientID:     {clientID},
		oauth2.ParamRefreshToken: {refreshToken},
	}
}

func strPtr(s string) *string {
	return &s
}

func TestNewTokenService_RequiresCollaborators(t *testing.T) {
	_, err := auth.NewTokenService(nil, &stubGenerator{})
	require.Error(t, err)

	_, err = auth.NewTokenService(&stubDirectory{}, nil)
	require.Error(t, err)
}

func TestGetToken_InvalidGrantType(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		params url.Values
	}{
		{name: "absent", params: url.Values{oauth2.ParamClientID: {testClientID}}},
		{name: "empty", params: url.Values{oauth2.ParamGrantType: {""}}},
		{name: "password", params: url.Values{oauth2.ParamGrantType: {"password"}}},
		{name: "implicit", params: url.Values{oauth2.ParamGrantType: {"implicit"}}},
		{name: "wrong case", params: url.Values{oauth2.ParamGrantType: {"Client_Credentials"}}},
		{name: "padded", params: url.Values{oauth2.ParamGrantType: {" refresh_token"}}},
		{name: "no params", params: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)

			resp, err := f.service.GetToken(ctx, tt.params)
			require.ErrorIs(t, err, apperrors.ErrInvalidParameter)
			require.Nil(t, resp)
			require.Zero(t, f.generator.totalCalls())
		})
	}
}

func TestGetToken_AuthorizationCodeNotImplemented(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		params url.Values
	}{
		{name: "bare", params: url.Values{oauth2.ParamGrantType: {"authorization_code"}}},
		{name: "with valid client", params: url.Values{
			oauth2.ParamGrantType:    {"authorization_code"},
			oauth2.ParamClientID:     {testClientID},
			oauth2.ParamClientSecret: {testClientSecret},
			"code":                   {"abc"},
			"redirect_uri":           {"http://localhost/cb"},
		}},
		{name: "with unknown client", params: url.Values{
			oauth2.ParamGrantType: {"authorization_code"},
			oauth2.ParamClientID:  {"nobody"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)

			resp, err := f.service.GetToken(ctx, tt.params)
			require.ErrorIs(t, err, apperrors.ErrNotImplemented)
			require.Nil(t, resp)
			require.Zero(t, f.directory.clientCalls)
			require.Zero(t, f.generator.totalCalls())
		})
	}
}

func TestGetToken_ClientCredentials(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	resp, err := f.service.GetToken(ctx, clientCredentialsParams(testClientID, strPtr(testClientSecret)))
	require.NoError(t, err)
	require.Equal(t, "access-1", resp.AccessToken)
	require.Nil(t, resp.RefreshToken)
	require.Equal(t, oauth2.BearerTokenType, resp.TokenType)
	require.Equal(t, 3600, resp.ExpiresIn)
	require.Equal(t, testClientID, f.generator.lastClient.ID)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	require.Contains(t, string(body), `"refresh_token":null`)
}

func TestGetToken_ClientCredentialsWrongSecret(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		secret *string
	}{
		{name: "absent", secret: nil},
		{name: "empty", secret: strPtr("")},
		{name: "different", secret: strPtr("not-S")},
		{name: "prefix", secret: strPtr("SS")},
		{name: "case", secret: strPtr("s")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)

			resp, err := f.service.GetToken(ctx, clientCredentialsParams(testClientID, tt.secret))
			require.ErrorIs(t, err, apperrors.ErrNotAuthorized)
			require.Nil(t, resp)
			require.Zero(t, f.generator.totalCalls(), "generator must not be reached")
		})
	}
}

func TestGetToken_ClientCredentialsNoConfiguredSecret(t *testing.T) {
	ctx := context.Background()

	for _, secret := range []*string{nil, strPtr(""), strPtr("anything"), strPtr(testClientSecret)} {
		f := setupTestFixture(t)
		f.directory.client.Secret = ""

		resp, err := f.service.GetToken(ctx, clientCredentialsParams(testClientID, secret))
		require.NoError(t, err)
		require.NotEmpty(t, resp.AccessToken)
		require.Nil(t, resp.RefreshToken)
	}
}

func TestGetToken_ClientCredentialsUnknownClient(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	resp, err := f.service.GetToken(ctx, clientCredentialsParams("unregistered", strPtr(testClientSecret)))
	require.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	require.Nil(t, resp)
	require.Zero(t, f.generator.totalCalls())
}

func TestGetToken_ClientCredentialsGenerationDeclined(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.generator.declineClientCredentials = true

	resp, err := f.service.GetToken(ctx, clientCredentialsParams(testClientID, strPtr(testClientSecret)))
	require.ErrorIs(t, err, apperrors.ErrNotAuthorized)
	require.Nil(t, resp)
}

func TestGetToken_RefreshToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	resp, err := f.service.GetToken(ctx, refreshTokenParams(testClientID, testRefreshToken))
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.RefreshToken)
	require.Equal(t, "refresh-1", *resp.RefreshToken)
	require.Equal(t, oauth2.BearerTokenType, resp.TokenType)

	require.Equal(t, "user-1", f.generator.lastUser.ID)
	require.Equal(t, []string{"admins", "users"}, f.generator.lastGroups)
	require.Equal(t, testClientID, f.generator.lastClient.ID)
	require.Nil(t, f.generator.lastScope)
	require.Equal(t, token.TriggerRefreshTokens, f.generator.lastTrigger)
}

func TestGetToken_RefreshTokenIgnoresClientSecret(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	params := refreshTokenParams(testClientID, testRefreshToken)
	params.Set(oauth2.ParamClientSecret, "wrong")

	resp, err := f.service.GetToken(ctx, params)
	require.NoError(t, err)
	require.NotNil(t, resp.RefreshToken)
}

func TestGetToken_RefreshTokenRepeatedExchange(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	params := refreshTokenParams(testClientID, testRefreshToken)

	first, err := f.service.GetToken(ctx, params)
	require.NoError(t, err)
	second, err := f.service.GetToken(ctx, params)
	require.NoError(t, err)

	require.NotEmpty(t, first.AccessToken)
	require.NotEmpty(t, second.AccessToken)
	require.Equal(t, 2, f.generator.totalCalls(), "each exchange generates afresh")
}

func TestGetToken_RefreshTokenUnresolvable(t *testing.T) {
	ctx := context.Background()

	for _, refreshToken := range []string{"garbage", "", "expired-token"} {
		f := setupTestFixture(t)

		resp, err := f.service.GetToken(ctx, refreshTokenParams(testClientID, refreshToken))
		require.ErrorIs(t, err, apperrors.ErrNotAuthorized)
		require.Nil(t, resp)
		require.Zero(t, f.generator.totalCalls())
	}
}

// Each collaborator lookup failing alone must yield NotAuthorized without a
// token being generated.
func TestGetToken_SinglePointFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name            string
		params          url.Values
		breakIt         func(f *testFixture)
		generatorCalled bool
	}{
		{
			name:    "client credentials: missing client",
			params:  clientCredentialsParams(testClientID, strPtr(testClientSecret)),
			breakIt: func(f *testFixture) { f.directory.client = nil },
		},
		{
			name:            "client credentials: generation declines",
			params:          clientCredentialsParams(testClientID, strPtr(testClientSecret)),
			breakIt:         func(f *testFixture) { f.generator.declineClientCredentials = true },
			generatorCalled: true,
		},
		{
			name:    "refresh token: missing user pool",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.directory.pool = nil },
		},
		{
			name:    "refresh token: missing client",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.directory.client = nil },
		},
		{
			name:    "refresh token: missing user",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.pool.user = nil },
		},
		{
			name:    "refresh token: disabled user",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.pool.userErr = fmt.Errorf("user: %w: %w", apperrors.ErrNotFound, apperrors.ErrUserDisabled) },
		},
		{
			name:            "refresh token: generation declines",
			params:          refreshTokenParams(testClientID, testRefreshToken),
			breakIt:         func(f *testFixture) { f.generator.declineGenerate = true },
			generatorCalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tt.breakIt(f)

			resp, err := f.service.GetToken(ctx, tt.params)
			require.ErrorIs(t, err, apperrors.ErrNotAuthorized)
			require.Nil(t, resp)
			if !tt.generatorCalled {
				require.Zero(t, f.generator.totalCalls())
			}
		})
	}
}

func TestGetToken_InfrastructureErrorsPropagate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		params  url.Values
		breakIt func(f *testFixture)
	}{
		{
			name:    "client lookup",
			params:  clientCredentialsParams(testClientID, strPtr(testClientSecret)),
			breakIt: func(f *testFixture) { f.directory.clientErr = errStoreUnavailable },
		},
		{
			name:    "pool lookup",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.directory.poolErr = errStoreUnavailable },
		},
		{
			name:    "user lookup",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.pool.userErr = errStoreUnavailable },
		},
		{
			name:    "group memberships",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.pool.groupsErr = errStoreUnavailable },
		},
		{
			name:    "generation",
			params:  refreshTokenParams(testClientID, testRefreshToken),
			breakIt: func(f *testFixture) { f.generator.err = errStoreUnavailable },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			tt.breakIt(f)

			_, err := f.service.GetToken(ctx, tt.params)
			require.ErrorIs(t, err, errStoreUnavailable)
			require.NotErrorIs(t, err, apperrors.ErrNotAuthorized)
		})
	}
}

func TestGetToken_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			params := refreshTokenParams(testClientID, testRefreshToken)
			if i%2 == 0 {
				params = clientCredentialsParams(testClientID, strPtr(testClientSecret))
			}
			if _, err := f.service.GetToken(ctx, params); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, workers, f.generator.totalCalls())
}
