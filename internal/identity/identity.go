// Package identity переносит имя текущего пользователя через context.Context.
// Аутентификация живёт снаружи: сюда попадает уже проверенное имя.
package identity

import (
	"context"
	"strings"
)

type contextKey struct{}

// Фолбэки для записей без пользователя.
const (
	UnknownUser = "Unknown"
	DefaultUser = "User"
)

func WithUser(ctx context.Context, name string) context.Context {
	name = strings.TrimSpace(name)
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, name)
}

func CurrentUser(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(contextKey{}).(string)
	return name, ok && name != ""
}

// UserOr возвращает текущего пользователя или fallback.
func UserOr(ctx context.Context, fallback string) string {
	if name, ok := CurrentUser(ctx); ok {
		return name
	}
	return fallback
}
