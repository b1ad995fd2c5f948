// Package codec provides pluggable value serialization for cache backends.
// The JSON codec is the reference implementation; msgpack is available as a
// compact binary alternative.
package codec

// Codec converts values to and from the byte slices stored in a cache
// backend. Implementations must be safe for concurrent use and must
// round-trip any value they successfully marshal.
type Codec interface {
	// Marshal serializes a value for storage.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes stored bytes into the target value.
	// The target must be a non-nil pointer.
	Unmarshal(data []byte, v any) error

	// Name returns a short identifier for logs and metrics labels.
	Name() string
}
