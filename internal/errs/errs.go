// Package errs defines the sentinel error kinds shared across the extract
// pipeline and the road-graph builder, matching the error taxonomy of the
// original tool (open/read/decode failures, unsupported compression,
// serialize/deserialize, store, and the two road-graph persistence kinds).
package errs

import "errors"

var (
	ErrOpen                  = errors.New("open failed")
	ErrRead                  = errors.New("read failed")
	ErrDecode                = errors.New("decode failed")
	ErrUnsupportedCompression = errors.New("unsupported blob compression")
	ErrSerialize             = errors.New("serialize failed")
	ErrDeserialize           = errors.New("deserialize failed")
	ErrStore                 = errors.New("store failed")
	ErrFailedToLoad          = errors.New("failed to load road graph")
	ErrFailedToSave          = errors.New("failed to save road graph")
	ErrMissingData           = errors.New("requested tile not present")
)
