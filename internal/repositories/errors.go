package repositories

import (
	"context"
	"errors"

	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/redis/go-redis/v9"
)

// NewRecordNotFoundError reports a missing record of the given kind
func NewRecordNotFoundError(kind, id string) error {
	return engerr.NotFoundf("%s not found: %s", kind, id).
		WithMeta(kind+"_id", id)
}

// StoreError classifies a store failure. A missing key becomes not_found,
// cancellation passes through untouched and every other transport failure
// is store_unavailable so callers can retry it.
func StoreError(err error, kind, id, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return NewRecordNotFoundError(kind, id)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var engineErr *engerr.Error
	if errors.As(err, &engineErr) {
		return err
	}
	return engerr.StoreUnavailable(err, op+" "+kind).WithMeta(kind+"_id", id)
}

// CorruptRecordError reports a record that cannot be decoded
func CorruptRecordError(err error, kind, id string) error {
	return engerr.WrapWithCode(err, engerr.CodeInvalidState, "corrupt "+kind+" record").
		WithMeta(kind+"_id", id)
}
