package keys_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-token-service/internal/config"
	"github.com/jrsteele09/go-token-service/token/keys"
	"github.com/stretchr/testify/require"
)

func testClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "user-1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Minute).Unix(),
	}
}

func signingConfig(alg, secret, pem string) *config.Settings {
	cfg := &config.Settings{}
	cfg.Signing.Alg = alg
	cfg.Signing.Secret = secret
	cfg.Signing.KeyID = "kid-1"
	cfg.Signing.PrivateKeyPEM = pem
	return cfg
}

func TestHMACSigner_SignAndVerify(t *testing.T) {
	signer := keys.NewHMACSigner("0123456789abcdef0123456789abcdef", "kid-1")

	raw, err := signer.Sign(testClaims())
	require.NoError(t, err)

	claims, err := keys.Verify(signer, raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims["sub"])

	other := keys.NewHMACSigner("another-secret-another-secret-xx", "kid-1")
	_, err = keys.Verify(other, raw)
	require.Error(t, err)
}

func TestKeyPairSigner_SignVerifyAndJWKS(t *testing.T) {
	keyPair, err := keys.GenerateRSAKeyPair("kid-rsa", 1024)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(keyPair)

	raw, err := signer.Sign(testClaims())
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	require.NoError(t, err)
	require.Equal(t, "kid-rsa", parsed.Header["kid"])
	require.Equal(t, keys.RS256, parsed.Header["alg"])

	_, err = keys.Verify(signer, raw)
	require.NoError(t, err)

	jwks, err := signer.GetJWKS()
	require.NoError(t, err)
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "RSA", jwks.Keys[0].Kty)
	require.Equal(t, "kid-rsa", jwks.Keys[0].Kid)
	require.Equal(t, "AQAB", jwks.Keys[0].E)
}

func TestVerify_RejectsAlgorithmMismatch(t *testing.T) {
	keyPair, err := keys.GenerateRSAKeyPair("kid-rsa", 2048)
	require.NoError(t, err)
	rsaSigner := keys.NewKeyPairSigner(keyPair)
	hmacSigner := keys.NewHMACSigner("0123456789abcdef0123456789abcdef", "")

	raw, err := hmacSigner.Sign(testClaims())
	require.NoError(t, err)

	_, err = keys.Verify(rsaSigner, raw)
	require.Error(t, err)
}

func TestVerify_RejectsExpired(t *testing.T) {
	signer := keys.NewHMACSigner("0123456789abcdef0123456789abcdef", "")
	raw, err := signer.Sign(jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Minute).Unix()})
	require.NoError(t, err)

	_, err = keys.Verify(signer, raw)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestNewSignerFromConfig(t *testing.T) {
	t.Run("HS256 with secret", func(t *testing.T) {
		signer, err := keys.NewSignerFromConfig(signingConfig(keys.HS256, "0123456789abcdef0123456789abcdef", ""))
		require.NoError(t, err)
		require.Equal(t, jwt.SigningMethodHS256, signer.GetSigningMethod())
		_, ok := signer.(keys.JWKSPublisher)
		require.False(t, ok, "HMAC keys are never published")
	})

	t.Run("HS256 without secret generates one", func(t *testing.T) {
		signer, err := keys.NewSignerFromConfig(signingConfig(keys.HS256, "", ""))
		require.NoError(t, err)
		raw, err := signer.Sign(testClaims())
		require.NoError(t, err)
		_, err = keys.Verify(signer, raw)
		require.NoError(t, err)
	})

	t.Run("RS256 from PEM", func(t *testing.T) {
		keyPair, err := keys.GenerateRSAKeyPair("ignored", 2048)
		require.NoError(t, err)
		pemData, err := keyPair.ExportPrivateKeyPEM()
		require.NoError(t, err)

		signer, err := keys.NewSignerFromConfig(signingConfig(keys.RS256, "", pemData))
		require.NoError(t, err)
		publisher, ok := signer.(keys.JWKSPublisher)
		require.True(t, ok)
		jwks, err := publisher.GetJWKS()
		require.NoError(t, err)
		require.Equal(t, "kid-1", jwks.Keys[0].Kid)
	})

	t.Run("RS256 with bad PEM", func(t *testing.T) {
		_, err := keys.NewSignerFromConfig(signingConfig(keys.RS256, "", "not a pem"))
		require.Error(t, err)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := keys.NewSignerFromConfig(signingConfig("ES256", "", ""))
		require.Error(t, err)
	})
}
