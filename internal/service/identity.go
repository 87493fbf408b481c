package service

import (
	"time"

	"github.com/Eursukkul/parking-reservation/internal/models"
)

// Identity is the verified caller behind a bearer token.
type Identity struct {
	UID       string
	Email     string
	Role      models.Role
	TokenID   string
	ExpiresAt time.Time
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

func (i *Identity) actor() models.Actor {
	if i.IsAdmin() {
		return models.ActorAdmin
	}
	return models.ActorOwner
}
