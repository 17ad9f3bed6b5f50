package middleware

import (
	"context"
	"net/http"

	"paycore/internal/requestctx"
	"paycore/internal/transport/http/api"
)

const OrganizationHeader = "X-Organization"

type OrganizationResolver interface {
	Has(name string) (string, bool)
}

// Organization selects the organization backend from the X-Organization
// header. A missing header selects the default organization.
func Organization(resolver OrganizationResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, ok := resolver.Has(r.Header.Get(OrganizationHeader))
			if !ok {
				api.Fail(w, http.StatusBadRequest, "unknown_organization", "unknown organization", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r.WithContext(requestctx.WithOrganization(r.Context(), name)))
		})
	}
}

func GetOrganization(ctx context.Context) string {
	return requestctx.GetOrganization(ctx)
}
