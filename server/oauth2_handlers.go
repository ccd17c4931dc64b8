package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/oauth2"
	"github.com/jrsteele09/go-token-service/token/keys"
	"github.com/rs/zerolog"
)

const contentTypeJSON = "application/json; charset=utf-8"

// OAuth2 error codes (RFC 6749 section 5.2)
const (
	errorInvalidRequest       = "invalid_request"
	errorInvalidClient        = "invalid_client"
	errorUnsupportedGrantType = "unsupported_grant_type"
	errorServerError          = "server_error"
	errorNotFound             = "not_found"
)

// WellKnownOpenIDConfig serves the discovery document for the token endpoint
func (s *Server) WellKnownOpenIDConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		baseURL := s.config.GetBaseURL()

		resp := map[string]any{
			"issuer":         baseURL,
			"token_endpoint": baseURL + RouteOAuth2Token,

			"grant_types_supported": oauth2.ServicedGrantTypes,
			"token_endpoint_auth_methods_supported": []string{
				"client_secret_post",  // Credentials in POST body
				"client_secret_basic", // Credentials in Authorization header
			},
			"access_token_signing_alg_values_supported": []string{s.signer.GetSigningMethod().Alg()},
		}
		if _, ok := s.signer.(keys.JWKSPublisher); ok {
			resp["jwks_uri"] = baseURL + RouteWellKnownJWKS
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// JWKS returns the JSON Web Key Set used to validate tokens.
// Symmetric signing keys are never published.
func (s *Server) JWKS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		publisher, ok := s.signer.(keys.JWKSPublisher)
		if !ok {
			writeJSONError(w, errorNotFound, "no public signing keys", http.StatusNotFound)
			return
		}

		jwks, err := publisher.GetJWKS()
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to build JWKS")
			writeJSONError(w, errorServerError, "failed to get JWKS", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_ = json.NewEncoder(w).Encode(jwks)
	}
}

// Token exchanges client credentials or a refresh token for tokens
func (s *Server) Token() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, errorInvalidRequest, "failed to parse form data", http.StatusBadRequest)
			return
		}

		params, err := tokenParameters(r)
		if err != nil {
			writeJSONError(w, errorInvalidRequest, err.Error(), http.StatusBadRequest)
			return
		}

		tokenResponse, err := s.tokens.GetToken(r.Context(), params)
		if err != nil {
			s.writeTokenError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		_ = json.NewEncoder(w).Encode(tokenResponse)
	}
}

var (
	errMalformedBasicAuth = errors.New("malformed basic authorization")
	errMultipleClientAuth = errors.New("client credentials sent in both the authorization header and the body")
)

// tokenParameters returns the form body parameters. HTTP Basic client
// credentials fill client_id and client_secret. A request may authenticate
// with one method only: a body client_secret next to Basic auth, or a body
// client_id that differs from the Basic username, is rejected.
func tokenParameters(r *http.Request) (url.Values, error) {
	params := url.Values{}
	for k, v := range r.PostForm {
		params[k] = v
	}

	username, password, ok := r.BasicAuth()
	if !ok {
		return params, nil
	}

	// RFC 6749 2.3.1: both parts are form-urlencoded before being joined
	clientID, err := url.QueryUnescape(username)
	if err != nil {
		return nil, errMalformedBasicAuth
	}
	clientSecret, err := url.QueryUnescape(password)
	if err != nil {
		return nil, errMalformedBasicAuth
	}

	if params.Has(oauth2.ParamClientSecret) {
		return nil, errMultipleClientAuth
	}
	if params.Has(oauth2.ParamClientID) && params.Get(oauth2.ParamClientID) != clientID {
		return nil, errMultipleClientAuth
	}

	params.Set(oauth2.ParamClientID, clientID)
	params.Set(oauth2.ParamClientSecret, clientSecret)
	return params, nil
}

// writeTokenError maps the token service error kinds onto OAuth2 error responses.
// Descriptions are fixed so no failure cause leaks to the caller.
func (s *Server) writeTokenError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	switch {
	case errors.Is(err, apperrors.ErrInvalidParameter):
		logger.Debug().Err(err).Msg("invalid token request")
		writeJSONError(w, errorInvalidRequest, "grant_type is missing or not recognised", http.StatusBadRequest)

	case errors.Is(err, apperrors.ErrNotAuthorized):
		logger.Debug().Err(err).Msg("token request not authorized")
		if r.Header.Get("Authorization") != "" {
			w.Header().Set("WWW-Authenticate", `Basic realm="token"`)
		}
		writeJSONError(w, errorInvalidClient, "client authentication failed", http.StatusUnauthorized)

	case errors.Is(err, apperrors.ErrNotImplemented):
		writeJSONError(w, errorUnsupportedGrantType, "grant type is not supported", http.StatusNotImplemented)

	default:
		logger.Error().Err(err).Msg("token request failed")
		writeJSONError(w, errorServerError, "internal server error", http.StatusInternalServerError)
	}
}

// Health reports the status of each registered dependency check
func (s *Server) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		checks := make(map[string]string, len(s.healthChecks))
		for name, check := range s.healthChecks {
			if err := check(r.Context()); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Str("check", name).Msg("health check failed")
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "unavailable"
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": overall,
			"checks": checks,
		})
	}
}

// writeJSONError writes an OAuth2 error response
func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}
