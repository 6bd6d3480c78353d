package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for every stored password.
const PasswordCost = 12

const (
	RoleCitizen   = "citizen"
	RoleAdmin     = "admin"
	RoleDeptStaff = "dept_staff"
)

// DefaultRoles is the role set assigned to new accounts.
func DefaultRoles() []string {
	return []string{RoleCitizen}
}

type Address struct {
	Line1   string `bson:"line1,omitempty" json:"line1,omitempty"`
	Line2   string `bson:"line2,omitempty" json:"line2,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

type User struct {
	ID              primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Name            string                 `bson:"name" json:"name"`
	Email           string                 `bson:"email,omitempty" json:"email,omitempty"`
	Mobile          string                 `bson:"mobile" json:"mobile"`
	PasswordHash    string                 `bson:"passwordHash,omitempty" json:"-"`
	Roles           []string               `bson:"roles" json:"roles"`
	AadhaarLast4    string                 `bson:"aadhaar_last4,omitempty" json:"aadhaarLast4,omitempty"`
	DigilockerID    string                 `bson:"digilocker_id,omitempty" json:"digilockerId,omitempty"`
	ProfilePhotoURL string                 `bson:"profilePhotoUrl,omitempty" json:"profilePhotoUrl,omitempty"`
	Address         *Address               `bson:"address,omitempty" json:"address,omitempty"`
	IsActive        bool                   `bson:"isActive" json:"isActive"`
	Metadata        map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt       time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// HashPassword stores the bcrypt hash of plain on the user.
func (u *User) HashPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// ComparePassword reports whether candidate matches the stored hash.
// Users without a password never match.
func (u *User) ComparePassword(candidate string) bool {
	if u.PasswordHash == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate))
	return err == nil
}

func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// PublicUser is the projection returned by the auth endpoints.
type PublicUser struct {
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Mobile string             `json:"mobile"`
	Email  string             `json:"email,omitempty"`
	Roles  []string           `json:"roles"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:     u.ID,
		Name:   u.Name,
		Mobile: u.Mobile,
		Email:  u.Email,
		Roles:  u.Roles,
	}
}

// Identity is the caller resolved by the auth middleware.
type Identity struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Email  string             `json:"email,omitempty"`
	Mobile string             `json:"mobile"`
	Roles  []string           `json:"roles"`
}

func (u *User) Identity() *Identity {
	return &Identity{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Mobile: u.Mobile,
		Roles:  u.Roles,
	}
}

// PrimaryRole is the role recorded on timeline events performed by this identity.
func (i *Identity) PrimaryRole() string {
	if len(i.Roles) == 0 {
		return RoleCitizen
	}
	return i.Roles[0]
}

// IsStaff reports whether the identity may see issues reported by others.
func (i *Identity) IsStaff() bool {
	for _, r := range i.Roles {
		if r == RoleAdmin || r == RoleDeptStaff {
			return true
		}
	}
	return false
}

// UserRef is an expanded user reference embedded in issue responses.
type UserRef struct {
	ID     primitive.ObjectID `json:"_id"`
	Name   string             `json:"name"`
	Mobile string             `json:"mobile,omitempty"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Mobile: u.Mobile}
}
