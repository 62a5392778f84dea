// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/hackreg/internal/repository"
	"github.com/deppfellow/hackreg/internal/server"
)

type Services struct {
	Auth         *AuthService
	Registration *RegistrationService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService := NewAuthService(s)

	return &Services{
		Auth:         authService,
		Registration: NewRegistrationService(s.Logger, repos.Registration, s.Job, s.Metrics),
	}, nil
}
