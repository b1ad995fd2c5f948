package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// OperationKey generates a deterministic cache key for an operation call.
// Format: prefix:name for a nil argument, otherwise prefix:name:digest
// where digest is the xxhash64 of the argument's canonical JSON form.
//
// JSON keeps the derivation stable: map keys are sorted and struct fields
// serialize in declaration order, so equal arguments always produce equal
// keys. Arguments that cannot be marshaled fall back to their fmt
// representation, which keeps the call working at the cost of weaker
// key identity.
//
// Example:
//
//	user_data:fetch_profile:a94f38c11e0b2f44
func OperationKey(prefix, name string, arg any) string {
	if arg == nil {
		return prefix + ":" + name
	}

	data, err := json.Marshal(arg)
	if err != nil {
		data = []byte(fmt.Sprintf("%T:%v", arg, arg))
	}

	return fmt.Sprintf("%s:%s:%016x", prefix, name, xxhash.Sum64(data))
}

// RequestKey generates a deterministic cache key for an HTTP request from
// its path and query parameters. Query parameters are sorted so that
// /items?a=1&b=2 and /items?b=2&a=1 share an entry.
//
// Example:
//
//	items:/items/42:fields=all
func RequestKey(prefix string, r *http.Request) string {
	parts := []string{prefix, r.URL.Path}

	query := r.URL.Query()
	if len(query) > 0 {
		queryKeys := make([]string, 0, len(query))
		for key := range query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := query[key]
			sort.Strings(values)
			for _, value := range values {
				parts = append(parts, fmt.Sprintf("%s=%s", key, value))
			}
		}
	}

	return strings.Join(parts, ":")
}
