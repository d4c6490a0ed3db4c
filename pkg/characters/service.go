package characters

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidID is returned by GetByID for ids below 1, before any request is made.
var ErrInvalidID = errors.New("characters: id must be a positive integer")

// Getter is the transport the service needs. *api.Client satisfies it.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values, dst any) error
}

// Service exposes the character endpoints. Failures are passed through
// unchanged, so callers can inspect them with the api package helpers.
type Service struct {
	api Getter
}

// NewService creates a Service on top of g.
func NewService(g Getter) *Service {
	return &Service{api: g}
}

// List returns one page of characters matching p.
func (s *Service) List(ctx context.Context, p ListParams) (*Page, error) {
	var page Page
	if err := s.api.Get(ctx, "/character", p.Values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetByID returns a single character.
func (s *Service) GetByID(ctx context.Context, id int) (*Character, error) {
	if id < 1 {
		return nil, ErrInvalidID
	}
	var c Character
	if err := s.api.Get(ctx, "/character/"+strconv.Itoa(id), nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Search lists characters whose name contains term, within the filters of p.
func (s *Service) Search(ctx context.Context, term string, p ListParams) (*Page, error) {
	p.Name = strings.TrimSpace(term)
	return s.List(ctx, p)
}
