// Package probe runs an ordered list of alternative attempts until one of
// them succeeds, and merges result lists coming from two sources.
package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
)

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("all attempts failed")

// Attempt is one guess at how to perform an operation.
type Attempt struct {
	Name string
	Do   func(ctx context.Context) error
}

// FirstSuccess runs attempts one after another and returns the name of the
// first one that succeeds. Individual failures are only logged at debug
// level. When all fail, the error wraps ErrExhausted and every attempt's
// error. A cancelled context stops the sequence with ctx.Err().
func FirstSuccess(ctx context.Context, log logging.Logger, attempts []Attempt) (string, error) {
	if log == nil {
		log = logging.Nop()
	}

	errs := make([]error, 0, len(attempts)+1)
	errs = append(errs, ErrExhausted)

	for _, a := range attempts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		err := a.Do(ctx)
		if err == nil {
			return a.Name, nil
		}
		log.Debug(ctx, "attempt failed", "attempt", a.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", a.Name, err))
	}

	return "", errors.Join(errs...)
}

// Merge returns primary followed by the items of secondary whose key is not
// already present. Items with an empty key are dropped, and duplicates
// inside either list are collapsed to their first occurrence.
func Merge[T any](primary, secondary []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	out := make([]T, 0, len(primary)+len(secondary))

	add := func(items []T) {
		for _, it := range items {
			k := key(it)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, it)
		}
	}

	add(primary)
	add(secondary)
	return out
}
