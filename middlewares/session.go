package middlewares

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/multiverse/internal"
	"github.com/dmitrymomot/multiverse/pkg/logger"
	"github.com/dmitrymomot/multiverse/pkg/session"
)

// DefaultSessionCookie is the cookie holding the session id.
const DefaultSessionCookie = "mv_sid"

type sessionKey struct{}

// SessionConfig configures the session middleware.
type SessionConfig struct {
	CookieName string
	// MaxAge of the session cookie in seconds. Zero makes it a browser
	// session cookie.
	MaxAge int
}

// SessionOption configures SessionConfig.
type SessionOption func(*SessionConfig)

// WithSessionCookieName sets the cookie holding the session id.
func WithSessionCookieName(name string) SessionOption {
	return func(cfg *SessionConfig) {
		if name != "" {
			cfg.CookieName = name
		}
	}
}

// WithSessionMaxAge sets the session cookie lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(cfg *SessionConfig) {
		cfg.MaxAge = seconds
	}
}

// Session returns middleware that attaches the browser's session from
// registry to the request. A missing, expired or forged cookie starts a new
// session and sets the cookie.
func Session(registry *session.Registry, opts ...SessionOption) internal.Middleware {
	cfg := &SessionConfig{
		CookieName: DefaultSessionCookie,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			s, err := loadSession(c, registry, cfg.CookieName)
			if err != nil {
				return err
			}
			if s == nil {
				s, err = registry.Create(c.Context())
				if err != nil {
					return internal.ErrServiceUnavailable("Session unavailable", internal.WithError(err))
				}
				c.SetCookie(cfg.CookieName, s.ID, cfg.MaxAge)
			}

			c.Set(sessionKey{}, s)
			return next(c)
		}
	}
}

func loadSession(c internal.Context, registry *session.Registry, name string) (*session.Session, error) {
	id, ok := internal.FromCookie(name)(c)
	if !ok {
		return nil, nil
	}

	s, err := registry.Get(c.Context(), id)
	switch {
	case err == nil:
		return s, nil
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrInvalidID):
		c.LogDebug("session not found, starting a new one")
		return nil, nil
	default:
		return nil, internal.ErrServiceUnavailable("Session unavailable", internal.WithError(err))
	}
}

// GetSession returns the session attached by the Session middleware, or nil.
func GetSession(c internal.Context) *session.Session {
	return internal.ContextValue[*session.Session](c, sessionKey{})
}

// SessionExtractor returns a ContextExtractor that adds "session_id" to log
// records written with the request context.
func SessionExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if s, ok := ctx.Value(sessionKey{}).(*session.Session); ok && s != nil {
			return slog.String("session_id", s.ID), true
		}
		return slog.Attr{}, false
	}
}
