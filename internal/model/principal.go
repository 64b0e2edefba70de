package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleTechnician Role = "TECHNICIAN"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsDispatcher() bool { return p.Role == RoleDispatcher }
func (p Principal) IsTechnician() bool { return p.Role == RoleTechnician }
