package middlewares

import "context"

type ctxKey string

const (
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
	// ctxClientIDKey guarda el client_id autenticado (rutas OAuth)
	ctxClientIDKey ctxKey = "client_id"
)

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// WithClientID inyecta el client_id autenticado en el contexto.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, ctxClientIDKey, clientID)
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetClientID obtiene el client_id autenticado del contexto.
func GetClientID(ctx context.Context) string {
	if v := ctx.Value(ctxClientIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
