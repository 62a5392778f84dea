package repository

import (
	"github.com/deppfellow/hackreg/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Registration *RegistrationRepository
}

// NewRepositories builds every repository on the server's connection pool.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Registration: NewRegistrationRepository(s.DB.Pool),
	}
}
