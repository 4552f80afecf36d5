package middleware

import (
	"context"
	"net/http"

	"taskFlow/internal/identity"

	"github.com/google/uuid"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

// UserHeader выставляет UI после аутентификации; сама аутентификация снаружи.
const UserHeader = "X-User"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if requestId == "" {
			requestId = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestId)

		ctx := context.WithValue(r.Context(), RequestIdKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

// Identity кладёт имя пользователя из заголовка в контекст запроса.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if name := r.Header.Get(UserHeader); name != "" {
			r = r.WithContext(identity.WithUser(r.Context(), name))
		}
		next.ServeHTTP(w, r)
	})
}
