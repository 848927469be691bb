package cache

import (
	"context"
	"encoding/json"
	"fmt"
)

// Decode loads key and unmarshals it into a T. When validate is non-nil the
// decoded value must pass it. Malformed or invalid payloads are discarded and
// reported as absent.
func Decode[T any](ctx context.Context, a *Adapter, key string, validate func(T) error) (T, bool) {
	var zero T
	data, ok := a.Load(ctx, key)
	if !ok {
		return zero, false
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		a.discard(ctx, key, err)
		return zero, false
	}
	if validate != nil {
		if err := validate(v); err != nil {
			a.discard(ctx, key, err)
			return zero, false
		}
	}
	return v, true
}

// Encode marshals v as JSON and saves it under key.
func Encode(ctx context.Context, a *Adapter, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return a.Save(ctx, key, data)
}
