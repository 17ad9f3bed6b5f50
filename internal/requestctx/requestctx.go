package requestctx

import "context"

type ctxKey string

const (
	requestIDKey    ctxKey = "request_id"
	organizationKey ctxKey = "organization"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

// WithOrganization records which organization's database serves the request.
func WithOrganization(ctx context.Context, organization string) context.Context {
	return context.WithValue(ctx, organizationKey, organization)
}

func GetOrganization(ctx context.Context) string {
	if value, ok := ctx.Value(organizationKey).(string); ok {
		return value
	}
	return ""
}
