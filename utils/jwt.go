package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"outreachly/config"
)

type Claims struct {
	UserID       uint `json:"user_id"`
	TokenVersion int  `json:"token_version"`
	jwt.RegisteredClaims
}

// ParseJWTToken validates an access token issued by the auth service and
// returns its claims. Token issuance lives in the auth service; this
// backend only verifies.
func ParseJWTToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
