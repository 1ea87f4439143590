package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vending-machine/internal/db"
	"vending-machine/pkg"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const tokenTTL = time.Hour

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (string, error)
}

type authService struct {
	authDB    db.AuthDB
	log       pkg.Logger
	jwtSecret string
}

func NewAuthService(authDB db.AuthDB, logger pkg.Logger, jwtSecret string) AuthService {
	return &authService{
		authDB:    authDB,
		log:       logger,
		jwtSecret: jwtSecret,
	}
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (string, error) {
	if s.jwtSecret == "" {
		s.log.Error("auth: empty JWT secret key")
		return "", errors.New("could not generate token: empty secret key")
	}
	id, passHash, err := s.authDB.GetOperatorAuthData(ctx, username)
	if err != nil {
		s.log.Warn("invalid credentials", zap.String("username", username), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	match, err := argon2id.ComparePasswordAndHash(password, passHash)
	if err != nil {
		s.log.Error("failed to compare password hash", zap.String("username", username), zap.Error(err))
		return "", fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if !match {
		s.log.Warn("invalid credentials: password mismatch", zap.String("username", username))
		return "", fmt.Errorf("%w: password mismatch", ErrInvalidCredentials)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"operator_id": id,
		"username":    username,
		"exp":         time.Now().Add(tokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.log.Error("failed to generate token", zap.String("username", username), zap.Error(err))
		return "", fmt.Errorf("could not generate token: %w", err)
	}
	s.log.Info("Operator authenticated", zap.Int("operatorID", id), zap.String("username", username))
	return tokenString, nil
}
