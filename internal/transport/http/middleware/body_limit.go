package middleware

import (
	"net/http"
	"strings"
)

// BodyLimit caps request bodies. Paths matching a key in overrides use that
// limit instead, for endpoints that accept large batches.
func BodyLimit(maxBytes int64, overrides map[string]int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				limit := maxBytes
				path := normalizedAPIPath(r.URL.Path)
				for prefix, override := range overrides {
					if strings.HasPrefix(path, prefix) {
						limit = override
						break
					}
				}
				if limit > 0 {
					r.Body = http.MaxBytesReader(w, r.Body, limit)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
