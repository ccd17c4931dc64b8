package keys

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-token-service/internal/config"
	"github.com/rs/zerolog/log"
)

// Signer is an interface for signing and verifying JWT tokens
type Signer interface {
	// Sign creates a signed JWT token from claims
	Sign(claims jwt.MapClaims) (string, error)

	// GetVerificationKey is a jwt.Keyfunc returning the key that verifies tokens from this signer
	GetVerificationKey(token *jwt.Token) (any, error)

	GetSigningMethod() jwt.SigningMethod
}

// JWKSPublisher is implemented by signers whose verification key can be published
type JWKSPublisher interface {
	GetJWKS() (*JWKS, error)
}

// HMACsigner implements Signer using symmetric HMAC-SHA256
type HMACsigner struct {
	secret []byte
	keyID  string
}

func NewHMACSigner(secret, keyID string) *HMACsigner {
	return &HMACsigner{
		secret: []byte(secret),
		keyID:  keyID,
	}
}

func (h *HMACsigner) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if h.keyID != "" {
		token.Header["kid"] = h.keyID
	}
	signedToken, err := token.SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with HMAC: %w", err)
	}
	return signedToken, nil
}

func (h *HMACsigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}

func (h *HMACsigner) GetSigningMethod() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}

// KeyPairSigner implements Signer using RSA with RS256
type KeyPairSigner struct {
	keyPair *KeyPair
}

func NewKeyPairSigner(keyPair *KeyPair) *KeyPairSigner {
	return &KeyPairSigner{
		keyPair: keyPair,
	}
}

func (a *KeyPairSigner) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(a.keyPair.GetSigningMethod(), claims)
	token.Header["kid"] = a.keyPair.KeyID

	signedToken, err := token.SignedString(a.keyPair.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token with asymmetric key: %w", err)
	}
	return signedToken, nil
}

func (a *KeyPairSigner) GetVerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return a.keyPair.PublicKey, nil
}

func (a *KeyPairSigner) GetSigningMethod() jwt.SigningMethod {
	return a.keyPair.GetSigningMethod()
}

func (a *KeyPairSigner) GetJWKS() (*JWKS, error) {
	jwk, err := a.keyPair.ToJWK()
	if err != nil {
		return nil, fmt.Errorf("failed to convert key to JWK: %w", err)
	}

	return &JWKS{
		Keys: []JWK{*jwk},
	}, nil
}

// NewSignerFromConfig builds the process-wide signer. Missing key material is
// generated, which means tokens do not survive a restart.
func NewSignerFromConfig(cfg config.SigningConfig) (Signer, error) {
	switch cfg.GetSigningAlg() {
	case HS256:
		secret := cfg.GetSigningSecret()
		if secret == "" {
			log.Warn().Msg("SIGNING_SECRET not set, generating an ephemeral HMAC secret")
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				return nil, fmt.Errorf("failed to generate HMAC secret: %w", err)
			}
			secret = hex.EncodeToString(b)
		}
		return NewHMACSigner(secret, cfg.GetSigningKeyID()), nil

	case RS256:
		if pemData := cfg.GetSigningKeyPEM(); pemData != "" {
			keyPair, err := LoadKeyPairFromPEM(cfg.GetSigningKeyID(), pemData)
			if err != nil {
				return nil, fmt.Errorf("failed to load signing key: %w", err)
			}
			return NewKeyPairSigner(keyPair), nil
		}
		log.Warn().Msg("SIGNING_KEY_PEM not set, generating an ephemeral RSA key pair")
		keyPair, err := GenerateRSAKeyPair(cfg.GetSigningKeyID(), 2048)
		if err != nil {
			return nil, err
		}
		return NewKeyPairSigner(keyPair), nil

	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", cfg.GetSigningAlg())
	}
}

// Verify parses rawToken and checks its signature and registered claims
func Verify(signer Signer, rawToken string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, signer.GetVerificationKey,
		jwt.WithValidMethods([]string{signer.GetSigningMethod().Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
