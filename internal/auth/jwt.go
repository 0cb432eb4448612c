package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"happiness.app/happiness-creator/internal/config"
)

// Session is the identity carried by a signed token.
type Session struct {
	UserID   string
	UserName string
}

func GenerateJWT(userID, userName string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": userName,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTSecret))
}

func ValidateJWT(tokenString string) (*Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return &Session{UserID: sub, UserName: name}, nil
}
