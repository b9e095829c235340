package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserNameKey contextKey = "user_name"
)

// User is the authenticated caller attached to a request context.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Claims carried by office access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name"`
}

type JWTConfig struct {
	// Secret is the HMAC signing key shared with the identity provider.
	Secret []byte
}

// JWTMiddleware validates a bearer token and attaches the caller to the
// request context. Requests without a valid token are rejected.
func JWTMiddleware(cfg JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return cfg.Secret, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			ctx := WithUser(c.Request().Context(), User{ID: claims.Subject, Name: claims.Name})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// DevAuthMiddleware attaches a fixed local user to every request. Development
// only; the single-desk office setup runs without an identity provider.
func DevAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := WithUser(c.Request().Context(), User{ID: "dev-user", Name: "Front Desk"})
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// WithUser returns a context carrying the authenticated caller.
func WithUser(ctx context.Context, u User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, u.ID)
	return context.WithValue(ctx, UserNameKey, u.Name)
}

func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(UserIDKey).(string)
	return uid
}

// CurrentUser returns the caller identity, or ok=false when the request is
// unauthenticated.
func CurrentUser(ctx context.Context) (User, bool) {
	id, _ := ctx.Value(UserIDKey).(string)
	if id == "" {
		return User{}, false
	}
	name, _ := ctx.Value(UserNameKey).(string)
	return User{ID: id, Name: name}, true
}
