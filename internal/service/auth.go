package service

import (
	"context"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/deppfellow/hackreg/internal/server"
)

type userGetter interface {
	Get(ctx context.Context, id string) (*clerk.User, error)
}

// Profile is the subset of the Clerk user the service exposes.
type Profile struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
}

// AuthService reads user profiles from Clerk's backend API.
type AuthService struct {
	users userGetter
}

func NewAuthService(s *server.Server) *AuthService {
	return NewAuthServiceWithUsers(user.NewClient(&clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{Key: clerk.String(s.Config.Auth.SecretKey)},
	}))
}

func NewAuthServiceWithUsers(users userGetter) *AuthService {
	return &AuthService{users: users}
}

// Profile looks up userID. An empty userID is ErrUnauthenticated.
func (a *AuthService) Profile(ctx context.Context, userID string) (*Profile, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	u, err := a.users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", userID, err)
	}

	return &Profile{
		UserID:    u.ID,
		Email:     primaryEmail(u),
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
	}, nil
}

// primaryEmail falls back to the first address when no primary is set.
func primaryEmail(u *clerk.User) string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	if u.PrimaryEmailAddressID != nil {
		for _, e := range u.EmailAddresses {
			if e != nil && e.ID == *u.PrimaryEmailAddressID {
				return e.EmailAddress
			}
		}
	}
	if u.EmailAddresses[0] == nil {
		return ""
	}
	return u.EmailAddresses[0].EmailAddress
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
