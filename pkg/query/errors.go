package query

import "errors"

var (
	ErrClosed          = errors.New("query: client closed")
	ErrDisabled        = errors.New("query: query disabled")
	ErrTypeMismatch    = errors.New("query: cached data has a different type")
	ErrSnapshotVersion = errors.New("query: unsupported snapshot version")
	ErrEncode          = errors.New("query: failed to encode entry data")
)
