// Package api is the HTTP boundary to the public character API.
//
// Every call either decodes a JSON body or fails with *Error, a tagged
// value whose Kind says what went wrong:
//
//   - KindNetwork: no response (dial, DNS, reset, transport timeout)
//   - KindNotFound: the server answered 404
//   - KindHTTP: any other non-2xx status
//   - KindUnknown: undecodable body, bad request construction, cancellation
//
// Status failures take their message from the body's "error" field and fall
// back to DefaultErrorMessage.
//
//	client, err := api.New("https://rickandmortyapi.com/api",
//		api.WithTimeout(10*time.Second),
//		api.WithResponseCache(cache.NewMemory[api.CachedResponse](), time.Minute),
//	)
//	var page characters.Page
//	err = client.Get(ctx, "/character", url.Values{"status": {"dead"}}, &page)
//	if api.IsNetworkError(err) { ... }
package api
