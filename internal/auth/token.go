package auth

import (
	"fmt"
	"time"

	"promokiosk/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the authenticated admin identity through a request.
type Claims struct {
	AdminID uuid.UUID
	Login   string
	Role    string
	StoreID *uuid.UUID
}

// TokenIssuer signs and verifies admin session tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates a token issuer with the given signing secret
// and token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime.
func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the given admin.
func (t *TokenIssuer) Issue(admin *model.Admin) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   admin.ID.String(),
		"login": admin.Login,
		"role":  admin.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(t.ttl).Unix(),
	}
	if admin.StoreID != nil {
		claims["store_id"] = admin.StoreID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse verifies a token and extracts its claims. Expired or otherwise
// invalid tokens return an error.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, _ := mapClaims["sub"].(string)
	adminID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", err)
	}

	login, _ := mapClaims["login"].(string)
	role, _ := mapClaims["role"].(string)

	claims := &Claims{
		AdminID: adminID,
		Login:   login,
		Role:    role,
	}

	if raw, ok := mapClaims["store_id"].(string); ok {
		storeID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid token store: %w", err)
		}
		claims.StoreID = &storeID
	}

	return claims, nil
}
