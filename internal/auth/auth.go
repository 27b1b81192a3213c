// Package auth provides JWT-middleware extracting user identity for every protected route
package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skinsight/DetectService/internal/model"
	"github.com/wb-go/wbf/ginext"
)

const userIDKey = "authUserID"

// NewJWTMiddleware - Bearer-токен HMAC, в claims ждем числовой "id".
// Любая проблема с токеном = 401 до входа в хендлер.
func NewJWTMiddleware(secret []byte) func(*ginext.Context) {
	return func(ctx *ginext.Context) {
		header := ctx.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			ctx.AbortWithStatusJSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			ctx.AbortWithStatusJSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			ctx.AbortWithStatusJSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
			return
		}

		// jwt числа декодирует как float64
		rawID, ok := claims["id"].(float64)
		if !ok || rawID <= 0 {
			ctx.AbortWithStatusJSON(401, map[string]string{"error": model.ErrUnauthorized.Error()})
			return
		}

		SetUser(ctx, int64(rawID))
		ctx.Next()
	}
}

// SetUser - кладет userID в контекст запроса; снаружи миддлвари нужен только тестам
func SetUser(ctx *ginext.Context, id int64) {
	ctx.Set(userIDKey, id)
}

// UserFromContext - достает userID, положенный миддлварью
func UserFromContext(ctx *ginext.Context) (int64, bool) {
	v, exists := ctx.Get(userIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
