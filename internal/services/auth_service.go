package services

import (
	"fmt"
	"log"
	"time"

	"tienda/internal/upstream"

	"github.com/dgrijalva/jwt-go"
)

// AuthAPI is the slice of the upstream client the login screen needs.
type AuthAPI interface {
	Login(email, password string) (*upstream.Session, error)
	Register(payload upstream.RegisterPayload) (string, error)
}

// AuthService forwards credentials to the storefront backend and, on success,
// issues the gateway's own session token for the admin routes. Credential
// storage and verification stay upstream; the gateway never sees a password
// hash.
type AuthService struct {
	api        AuthAPI
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which the session token is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(api AuthAPI, jwtSecret string) *AuthService {
	return &AuthService{
		api:        api,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// Login authenticates against the backend and returns a signed session token
// plus the backend's post-login redirect target.
func (s *AuthService) Login(email, password string) (string, string, error) {
	session, err := s.api.Login(email, password)
	if err != nil {
		return "", "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":   time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, session.Redirect, nil
}

// Register forwards a registration to the backend and returns its message.
func (s *AuthService) Register(name, email, password string) (string, error) {
	return s.api.Register(upstream.RegisterPayload{
		Name:     name,
		Email:    email,
		Password: password,
	})
}

// ValidateToken parses and validates a session token, returning the claims if
// valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
