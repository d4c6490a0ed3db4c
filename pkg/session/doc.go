// Package session keeps per-browser server state. Each session owns a
// long-lived query cache, hydrated from the first rendered page, and a
// selection store.
//
//	registry := session.NewRegistry(
//		session.WithIdleTTL(30*time.Minute),
//		session.WithDetailKey(characters.DetailKey),
//	)
//	defer registry.Close()
//
//	s, err := registry.Create(ctx)
//	s.Selection.Select(1)
package session
