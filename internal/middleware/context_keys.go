package middleware

import "context"

// contextKey is a private type for request-context keys. Using a custom type
// prevents collisions with other packages.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	callerIDKey  = contextKey("callerID")
)

// GetCallerIDFromContext retrieves the authenticated caller id (the JWT
// subject) from the request context. It returns the id and whether it was set.
func GetCallerIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(callerIDKey)
	if val == nil {
		return "", false
	}
	callerID, ok := val.(string)
	return callerID, ok
}
