package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	internal_errors "github.com/microsmart/portal/shared/errors"
)

const visitorClaim = "vid"

// JwtService signs and verifies the visitor cookie. The token only names the
// visitor; everything else about the visitor stays server-side.
type JwtService interface {
	NewToken(visitorId string) (string, error)
	DecodeToken(jwtStr string) (string, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) JwtService {
	return &Jwt{secretKey, ttl}
}

func (j *Jwt) NewToken(visitorId string) (string, error) {
	if visitorId == "" {
		return "", errors.New("empty visitor id")
	}
	claims := jwt.MapClaims{
		visitorClaim: visitorId,
		"exp":        time.Now().Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("can't create token: %w", err)
	}
	return tokenString, nil
}

func (j *Jwt) DecodeToken(jwtStr string) (string, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil || !token.Valid {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid visitor token", StatusCode: http.StatusUnauthorized}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid visitor token", StatusCode: http.StatusUnauthorized}
	}
	vid, ok := claims[visitorClaim].(string)
	if !ok || vid == "" {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid visitor token", StatusCode: http.StatusUnauthorized}
	}
	return vid, nil
}
