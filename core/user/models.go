package user

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rm-a0/flippit-sub000/core"
)

// Sortable fields
const (
	SortName      = "name"
	SortRole      = "role"
	SortCreatedAt = "createdAt"
)

var sortable = []string{SortName, SortRole, SortCreatedAt}

// DefaultOrdering is used by the repositories when no ordering is requested; ties are broken by id.
var DefaultOrdering = []core.Ordering{{Field: SortName, Ascending: true}}

type User struct {
	ID           uuid.UUID
	Name         string
	PhotoURL     *string
	Role         string
	Username     string // empty for users without credentials
	PasswordHash []byte
	CreatedAt    time.Time // UTC
	UpdatedAt    time.Time // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsAdmin() bool {
	return u.Role == core.RoleAdmin
}

// Roles returns the user's role as used by the authorization checks.
func (u *User) Roles() []string {
	return []string{u.Role}
}

// ListModel is the API representation of a User in listings.
type ListModel struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	PhotoURL *string   `json:"photoUrl"`
	Role     string    `json:"role"`
}

// DetailModel is the API representation of a single User, also used as input for writes.
// Username is read-only: it is set on registration.
type DetailModel struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name" validate:"required,notblank,min=3,max=50"`
	PhotoURL *string   `json:"photoUrl" validate:"omitempty,url"`
	Role     string    `json:"role" validate:"omitempty,role"`
	Username string    `json:"username,omitempty"`
}

func (m *DetailModel) clean() {
	m.Name = core.CleanString(m.Name)
	if m.PhotoURL != nil {
		m.PhotoURL = core.StringPtr(core.CleanString(*m.PhotoURL))
	}
	m.Role = core.CleanString(m.Role)
}

// RegisterModel contains information needed to create a new account.
type RegisterModel struct {
	Username        string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Name            string `json:"name" validate:"omitempty,min=3,max=50"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (rm *RegisterModel) clean() {
	rm.Username = core.CleanString(rm.Username, true /* lower */)
	rm.Name = core.CleanString(rm.Name)
	if rm.Name == "" {
		rm.Name = rm.Username
	}
}

// QueryFilter narrows a user listing.
// Search does a case-insensitive match on User.Name.
type QueryFilter struct {
	Search string
}
