package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"xportconnect/models"
)

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// TokenIssuer signs and verifies bearer tokens with an HS256 secret.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewTokenIssuer returns an issuer whose tokens expire after ttl.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{key: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateJWT generates a token for a user
func (ti *TokenIssuer) GenerateJWT(user models.User) (string, error) {
	now := ti.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   string(user.Role),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ti.ttl).Unix(),
			Subject:   user.ID.Hex(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(ti.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// ParseJWT validates tokenStr and returns the caller it was issued to.
func (ti *TokenIssuer) ParseJWT(tokenStr string) (models.Caller, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return ti.key, nil
	})
	if err != nil || !token.Valid {
		var verr *jwt.ValidationError
		if errors.As(err, &verr) && verr.Errors&jwt.ValidationErrorExpired != 0 {
			return models.Caller{}, fmt.Errorf("%w: token expired", ErrUnauthorized)
		}
		return models.Caller{}, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}

	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return models.Caller{}, fmt.Errorf("%w: invalid token subject", ErrUnauthorized)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return models.Caller{}, fmt.Errorf("%w: invalid token role", ErrUnauthorized)
	}
	return models.Caller{ID: id, Email: claims.Email, Role: role}, nil
}
