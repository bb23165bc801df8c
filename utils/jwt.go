package utils

import (
	"SecureDrop/config"
	"errors"
	"github.com/golang-jwt/jwt/v4"
	"log"
	"time"
)

// ManageClaims authorizes the management surface (revoke, logs, stats) of a
// single share link. The token is handed out once, at issue time, so links
// stay manageable without user accounts.
type ManageClaims struct {
	LinkID uint64 `json:"link_id"`
	jwt.RegisteredClaims
}

// GenerateManageToken creates the manage JWT for a link.
func GenerateManageToken(linkID uint64) (string, error) {
	claims := ManageClaims{
		LinkID: linkID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(30 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.AppConfig.JWTSecret))
	if err != nil {
		log.Println("Error signing token:", err)
		return "", err
	}
	return tokenString, nil
}

// VerifyManageToken parses and validates a manage JWT.
func VerifyManageToken(tokenString string) (*ManageClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ManageClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		log.Println("Error parsing token:", err)
		return nil, errors.New("invalid token")
	}
	if claims, ok := token.Claims.(*ManageClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
