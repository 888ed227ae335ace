package auth

import "github.com/golang-jwt/jwt/v5"

type Authenticator interface {
	GenerateToken(userID, role string) (string, error)
	ValidateAccessToken(token string) (*jwt.Token, error)
}
