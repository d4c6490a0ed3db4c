package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// MinSecretLen is the shortest secret WithSecret accepts.
const MinSecretLen = 32

var (
	ErrNotFound = errors.New("cookie: not found")
	ErrBadSig   = errors.New("cookie: invalid signature")
)

// Manager writes cookies with one set of attributes and, when it has a
// secret, signs them.
type Manager struct {
	secret []byte
	tmpl   http.Cookie
}

// Option configures a Manager.
type Option func(*Manager)

// New returns a Manager for HttpOnly, SameSite=Lax cookies on path "/".
func New(opts ...Option) *Manager {
	m := &Manager{tmpl: http.Cookie{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithSecret turns on signing. A secret shorter than MinSecretLen is ignored
// and cookies stay unsigned.
func WithSecret(secret string) Option {
	return func(m *Manager) {
		if len(secret) >= MinSecretLen {
			m.secret = []byte(secret)
		}
	}
}

func WithSecure(secure bool) Option {
	return func(m *Manager) { m.tmpl.Secure = secure }
}

func WithDomain(domain string) Option {
	return func(m *Manager) { m.tmpl.Domain = domain }
}

func WithPath(path string) Option {
	return func(m *Manager) { m.tmpl.Path = path }
}

func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) { m.tmpl.SameSite = ss }
}

// Signing reports whether cookies are signed.
func (m *Manager) Signing() bool { return m.secret != nil }

// Read returns the cookie value, verifying the signature when signing is on.
// A missing cookie is ErrNotFound; a forged or foreign one is ErrBadSig.
func (m *Manager) Read(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", ErrNotFound
	}
	if !m.Signing() {
		return c.Value, nil
	}

	i := strings.LastIndexByte(c.Value, '.')
	if i < 0 {
		return "", ErrBadSig
	}
	value, sig := c.Value[:i], c.Value[i+1:]
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, m.mac(name, value)) {
		return "", ErrBadSig
	}
	return value, nil
}

// Write sets the cookie. Signed values are "value.signature"; the signature
// covers the cookie name, so a value cannot be moved to another cookie.
func (m *Manager) Write(w http.ResponseWriter, name, value string, maxAge int) {
	if m.Signing() {
		value += "." + base64.RawURLEncoding.EncodeToString(m.mac(name, value))
	}
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires the cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

func (m *Manager) mac(name, value string) []byte {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return h.Sum(nil)
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	c := m.tmpl
	c.Name, c.Value, c.MaxAge = name, value, maxAge
	return &c
}
