package model

import "github.com/google/uuid"

// Identity is either a *User or an *Admin; Role is the discriminant.
type Identity interface {
	SubjectID() uuid.UUID
	Role() Role
}

func (u *User) SubjectID() uuid.UUID  { return u.ID }
func (u *User) Role() Role            { return RoleUser }
func (a *Admin) SubjectID() uuid.UUID { return a.ID }
func (a *Admin) Role() Role           { return RoleAdmin }

// Principal is the verified content of a token: who and in which role.
// It is what the authorization gate attaches to a request.
type Principal struct {
	SubjectID uuid.UUID
	Role      Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
