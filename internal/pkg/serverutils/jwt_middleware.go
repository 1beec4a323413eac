package serverutils

import (
	"strings"

	"collab-workspace-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIDLocal = "user_id"

// TokenVerifier checks HS256 bearer tokens. The REST middleware and the websocket
// handshake share one instance so both paths accept exactly the same credentials.
type TokenVerifier struct {
	secret []byte
}

func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify returns the principal carried in the user_id claim.
func (v *TokenVerifier) Verify(tokenStr string) (uuid.UUID, error) {
	if tokenStr == "" {
		return uuid.Nil, apperror.Authentication("Missing token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, &apperror.Error{Kind: apperror.KindAuthentication, Message: "Invalid token", Err: err}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperror.Authentication("Invalid token claims")
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, apperror.Authentication("Token missing user_id")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Authentication("Invalid user ID format in token")
	}
	return userId, nil
}

// TokenFromRequest reads the "token" query parameter first (browsers cannot set
// headers on a websocket upgrade), then the Authorization bearer header.
func TokenFromRequest(ctx *fiber.Ctx) string {
	if token := ctx.Query("token"); token != "" {
		return token
	}
	header := ctx.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func (v *TokenVerifier) JwtMiddleware(ctx *fiber.Ctx) error {
	header := ctx.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return apperror.Authentication("Missing token")
	}

	userId, err := v.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return err
	}

	ctx.Locals(userIDLocal, userId.String())
	return ctx.Next()
}

// UserID returns the principal stored by JwtMiddleware.
func UserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, ok := ctx.Locals(userIDLocal).(string)
	if !ok {
		return uuid.Nil, apperror.Authentication("Unauthorized")
	}
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Authentication("Invalid user ID")
	}
	return userId, nil
}
