package characters

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/multiverse/pkg/api"
	"github.com/dmitrymomot/multiverse/pkg/query"
)

// Query operation names. They are the prefix of every key.
const (
	OpList   = "characters"
	OpDetail = "character"
	OpSearch = "characters.search"
)

const (
	ListStaleTime   = 5 * time.Minute
	SearchStaleTime = 2 * time.Minute
)

// ListKey is the cache key of a list request. Status and gender "all"
// produce the same key as no filter.
func ListKey(p ListParams) query.Key {
	return query.NewKey(OpList, listParams(p))
}

// DetailKey is the cache key of a single character.
func DetailKey(id int) query.Key {
	return query.NewKey(OpDetail, query.Params{"id": id})
}

// SearchKey is the cache key of a name search.
func SearchKey(term string, p ListParams) query.Key {
	params := listParams(p)
	params["name"] = strings.TrimSpace(term)
	return query.NewKey(OpSearch, params)
}

func listParams(p ListParams) query.Params {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return query.Params{
		"status": string(p.Status),
		"gender": string(p.Gender),
		"page":   page,
	}
}

// ListQuery reads one page of characters. Data stays fresh for five
// minutes and failures are retried with ListRetry.
func ListQuery(s *Service, p ListParams) query.Query[*Page] {
	p.Name = ""
	return query.Query[*Page]{
		Key: ListKey(p),
		Fetch: func(ctx context.Context) (*Page, error) {
			return s.List(upstream(ctx), p)
		},
		StaleTime: ListStaleTime,
		Retry:     ListRetry,
	}
}

// DetailQuery reads one character with the client defaults.
func DetailQuery(s *Service, id int) query.Query[*Character] {
	return query.Query[*Character]{
		Key: DetailKey(id),
		Fetch: func(ctx context.Context) (*Character, error) {
			return s.GetByID(upstream(ctx), id)
		},
		Disabled: id < 1,
	}
}

// SearchQuery searches by name. It is disabled while the term is blank.
func SearchQuery(s *Service, term string, p ListParams) query.Query[*Page] {
	term = strings.TrimSpace(term)
	return query.Query[*Page]{
		Key: SearchKey(term, p),
		Fetch: func(ctx context.Context) (*Page, error) {
			return s.Search(upstream(ctx), term, p)
		},
		StaleTime: SearchStaleTime,
		Disabled:  term == "",
	}
}

// upstream prepares the context of a service call made by a query fetch.
// Refetches skip the shared response cache, which would otherwise answer
// with the body the query client just dropped.
func upstream(ctx context.Context) context.Context {
	if query.Revalidating(ctx) {
		return api.NoCache(ctx)
	}
	return ctx
}

// Attempts made by ListRetry, first try included.
const (
	ListNetworkAttempts = 4
	ListStatusAttempts  = 3
)

// ListRetry retries network failures three times and failures with an HTTP
// status twice. Anything else is surfaced immediately.
func ListRetry(failureCount int, err error) bool {
	if api.IsNetworkError(err) {
		return failureCount < ListNetworkAttempts-1
	}
	if _, ok := api.StatusCode(err); ok {
		return failureCount < ListStatusAttempts-1
	}
	return false
}

// ListBudget is the longest a list read can take when every attempt runs into
// attemptTimeout and backoff spaces the retries.
func ListBudget(attemptTimeout time.Duration, backoff query.Backoff) time.Duration {
	total := ListNetworkAttempts * attemptTimeout
	for i := range ListNetworkAttempts - 1 {
		total += backoff(i)
	}
	return total
}
