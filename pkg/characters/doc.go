// Package characters is the character catalog: the upstream data model, a
// Service over the API client and the query definitions used to cache its
// calls.
//
// Keys are derived from ListParams the same way wherever they are built, so
// a page prefetched during a full render and the same page read later from a
// session cache share one key:
//
//	svc := characters.NewService(apiClient)
//	page, err := query.Fetch(ctx, client, characters.ListQuery(svc, characters.ListParams{
//		Status: characters.StatusDead,
//		Page:   2,
//	}))
package characters
