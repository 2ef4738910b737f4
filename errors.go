package flux

import "errors"

var (
	// ErrNilReducer is returned by New when no reducer is supplied.
	ErrNilReducer = errors.New("flux: nil reducer")

	// ErrNilMiddleware is returned by WithMiddleware when a nil entry
	// appears in the middleware list.
	ErrNilMiddleware = errors.New("flux: nil middleware")
)
