package handler

import (
	"github.com/deppfellow/hackreg/internal/server"
	"github.com/deppfellow/hackreg/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	Registration *RegistrationHandler
	Account      *AccountHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		Registration: NewRegistrationHandler(s, services.Registration),
		Account:      NewAccountHandler(s, services.Auth),
	}
}
