package middleware

import (
	"net/http"

	"paycore/internal/domain/auth"
	"paycore/internal/transport/http/api"
)

const DeviceKeyHeader = "X-Device-Key"

// DeviceKey admits time-clock pollers whose key matches the configured bcrypt
// hash. With no hash configured every device request is refused.
func DeviceKey(hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(DeviceKeyHeader)
			if hash == "" || key == "" || auth.CheckKey(hash, key) != nil {
				api.Fail(w, http.StatusUnauthorized, "invalid_device_key", "device key required", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
