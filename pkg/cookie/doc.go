// Package cookie reads and writes cookies with shared attributes and
// optional HMAC-SHA256 signing.
//
//	m := cookie.New(cookie.WithSecure(true), cookie.WithSecret(secret))
//	m.Write(w, "mv_sid", id, 0)
//	id, err := m.Read(r, "mv_sid")
//
// Without a secret of at least [MinSecretLen] bytes values are stored as is.
// With one, a tampered cookie reads as [ErrBadSig].
package cookie
