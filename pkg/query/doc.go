// Package query is a keyed cache for read operations with request
// deduplication, stale-while-revalidate and retries.
//
// A Query pairs a canonical Key with a fetch function:
//
//	q := query.Query[*characters.Page]{
//		Key:       query.NewKey("characters", query.Params{"status": "dead", "page": 2}),
//		Fetch:     func(ctx context.Context) (*characters.Page, error) { return svc.List(ctx, params) },
//		StaleTime: 5 * time.Minute,
//	}
//	page, err := query.Fetch(ctx, client, q)
//
// Concurrent reads of one key share a single in-flight fetch. Each fetch gets
// a per-key generation and only the newest completion is stored, so a slow
// older response never replaces a newer one. Invalidate forces the next read
// to fetch again.
//
// Dehydrate and Hydrate move successful entries between clients as JSON,
// which is how a page render hands its prefetched data to a longer lived
// session cache:
//
//	snap, _ := requestClient.Dehydrate(time.Minute)
//	_, err := sessionClient.Hydrate(snap)
package query
