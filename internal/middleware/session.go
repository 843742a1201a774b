package middleware

import (
	"context"

	"fashion-order-service/internal/service"

	"github.com/gin-gonic/gin"
)

type contextKey string

const sessionContextKey contextKey = "order-status-session"

// WithSession deja el usuario autenticado en el contexto del request.
func WithSession(ctx context.Context, user *service.AuthUser) context.Context {
	return context.WithValue(ctx, sessionContextKey, user)
}

// UserFromContext devuelve el usuario de la sesión, o nil si el request no pasó por AuthMiddleware.
func UserFromContext(ctx context.Context) *service.AuthUser {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(sessionContextKey).(*service.AuthUser)
	return user
}

// Session es el atajo para handlers de gin.
func Session(c *gin.Context) *service.AuthUser {
	return UserFromContext(c.Request.Context())
}
