// Package jwtware validates bearer tokens on go-router routes and binds the
// resulting storefront.Claims to the request.
package jwtware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-storefront"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// ValidationListener is invoked after a token has been validated but before
// role checks.
type ValidationListener func(ctx router.Context, claims *storefront.Claims) error

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	SigningKey     SigningKey
	SigningKeys    map[string]SigningKey
	ContextKey     string
	TokenLookup    string
	AuthScheme     string
	KeyFunc        jwt.Keyfunc
	JWKSetURLs     []string

	// Issuer and Audience are enforced when set. A token passes the
	// audience check when it names any one of the configured audiences.
	Issuer   string
	Audience []string

	// RequiredRole specifies an exact role that must be present
	RequiredRole string

	ValidationListeners []ValidationListener

	Logger storefront.Logger
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// ConfigFromJWT builds a Config from the server configuration.
func ConfigFromJWT(cfg storefront.JWTConfig) Config {
	out := Config{
		ContextKey: cfg.ContextKey,
		JWKSetURLs: cfg.JWKSetURLs,
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
	}
	if cfg.SigningKey != "" {
		out.SigningKey = SigningKey{
			JWTAlg: cfg.SigningMethod,
			Key:    []byte(cfg.SigningKey),
		}
	}
	return out
}

func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			claims, err := cfg.parse(raw)
			if err != nil {
				cfg.Logger.Debug("bearer token rejected", "error", err)
				return cfg.ErrorHandler(ctx, err)
			}

			if err := cfg.runValidationListeners(ctx, claims); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
				return cfg.ErrorHandler(ctx, storefront.WrapWith(storefront.ErrInsufficientRole, nil, map[string]any{
					"required_role": cfg.RequiredRole,
					"role":          claims.Role(),
				}))
			}

			ctx.Locals(cfg.ContextKey, claims)
			ctx.SetContext(storefront.WithClaimsContext(ctx.Context(), claims))

			return cfg.SuccessHandler(ctx)
		}
	}
}

func (cfg *Config) parse(raw string) (*storefront.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &storefront.Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, cfg.KeyFunc, opts...)
	switch {
	case err == nil && token.Valid:
		if !cfg.acceptsAudience(claims.Audience) {
			return nil, storefront.WrapWith(storefront.ErrTokenMalformed, jwt.ErrTokenInvalidAudience, map[string]any{
				"audience": []string(claims.Audience),
			})
		}
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, storefront.WrapWith(storefront.ErrTokenExpired, err, nil)
	case err == nil:
		return nil, storefront.ErrTokenMalformed
	default:
		return nil, storefront.WrapWith(storefront.ErrTokenMalformed, err, nil)
	}
}

// jwt.WithAudience keeps only the last value it is given, so the
// configured list is matched here instead.
func (cfg *Config) acceptsAudience(aud jwt.ClaimStrings) bool {
	if len(cfg.Audience) == 0 {
		return true
	}
	for _, want := range cfg.Audience {
		for _, got := range aud {
			if got == want {
				return true
			}
		}
	}
	return false
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

// DefaultErrorHandler answers with the structured error as JSON.
func DefaultErrorHandler(c router.Context, err error) error {
	if errors.Is(err, ErrJWTMissingOrMalformed) {
		return c.JSON(router.StatusBadRequest, map[string]string{
			"error": ErrJWTMissingOrMalformed.Error(),
		})
	}

	body := map[string]string{"error": "invalid or expired token"}
	status := router.StatusUnauthorized

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		body["error"] = richErr.Message
		body["code"] = richErr.TextCode
		status = storefront.HTTPStatus(err)
	}
	return c.JSON(status, body)
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.Logger == nil {
		cfg.Logger = storefront.NopLogger{}
	}

	if cfg.SigningKey.Key == nil && len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 && cfg.KeyFunc == nil {
		panic("STOREFRONT: JWT middleware configuration: At least one of the following is required: KeyFunc, JWKSetURLs, SigningKeys, or SigningKey.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.KeyFunc == nil {
		if len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0 {
			var givenKeys map[string]keyfunc.GivenKey
			if cfg.SigningKeys != nil {
				givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
				for kid, key := range cfg.SigningKeys {
					givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
						Algorithm: key.JWTAlg,
					})
				}
			}
			if len(cfg.JWKSetURLs) > 0 {
				var err error
				cfg.KeyFunc, err = multiKeyfunc(givenKeys, cfg.JWKSetURLs, cfg.Logger)
				if err != nil {
					panic("Failed to create keyfunc from JWK Set URL: " + err.Error())
				}
			} else {
				cfg.KeyFunc = keyfunc.NewGiven(givenKeys).Keyfunc
			}
		} else {
			cfg.KeyFunc = signingKeyFunc(cfg.SigningKey)
		}
	}

	return cfg
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwtSetUrls []string, logger storefront.Logger) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys, logger)
	m := make(map[string]keyfunc.Options, len(jwtSetUrls))
	for _, url := range jwtSetUrls {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey, logger storefront.Logger) keyfunc.Options {
	if logger == nil {
		logger = storefront.NopLogger{}
	}
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to do a background refresh of JWT set", "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(ctx router.Context, claims *storefront.Claims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, claims); err != nil {
			return err
		}
	}
	return nil
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}

// bearerPrefix reports whether value starts with scheme followed by a space.
func bearerPrefix(value, scheme string) (string, bool) {
	scheme = strings.TrimSpace(scheme)
	l := len(scheme)
	if len(value) > l+1 && strings.EqualFold(value[:l], scheme) && value[l] == ' ' {
		return strings.TrimSpace(value[l:]), true
	}
	return "", false
}
