package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Status is the acceptance state of an emergency
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// StatusFor derives the status from the list of accepting volunteers
func StatusFor(volunteers []string) Status {
	if len(volunteers) > 0 {
		return StatusAccepted
	}
	return StatusPending
}

// Emergency is an incident reported by an account and accepted by volunteers
type Emergency struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Reporter    string    `gorm:"index;not null" json:"reporter"`
	Status      Status    `gorm:"type:varchar(16);not null" json:"status"`
	Volunteers  []string  `gorm:"serializer:json;type:text;not null" json:"volunteers"`
	CreatedAt   time.Time `gorm:"index;<-:create" json:"createdAt"`
}

// Normalize keeps Volunteers non-nil and Status consistent with it
func (e *Emergency) Normalize() {
	if e.Volunteers == nil {
		e.Volunteers = []string{}
	}
	e.Status = StatusFor(e.Volunteers)
}

// HasVolunteer reports whether name has already accepted the emergency
func (e *Emergency) HasVolunteer(name string) bool {
	for _, v := range e.Volunteers {
		if v == name {
			return true
		}
	}
	return false
}

// RemoveVolunteer drops name from the volunteer list, reporting whether it was present
func (e *Emergency) RemoveVolunteer(name string) bool {
	for i, v := range e.Volunteers {
		if v == name {
			e.Volunteers = append(e.Volunteers[:i:i], e.Volunteers[i+1:]...)
			return true
		}
	}
	return false
}

func (e *Emergency) BeforeSave(tx *gorm.DB) error {
	e.Normalize()
	return nil
}

func (e *Emergency) AfterFind(tx *gorm.DB) error {
	e.Normalize()
	return nil
}

// Role tags an account with the collection it belongs to
type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleVolunteer Role = "volunteer"
	RoleAgency    Role = "agency"
)

// Roles lists every role in document order
var Roles = []Role{RoleUser, RoleAdmin, RoleVolunteer, RoleAgency}

// ParseRole validates a role string
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Collection returns the document collection name holding accounts of this role
func (r Role) Collection() string {
	if r == RoleAgency {
		return "agencies"
	}
	return string(r) + "s"
}

// Account is a user, admin, volunteer or agency record
type Account struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Role         Role      `gorm:"type:varchar(16);uniqueIndex:idx_role_email;not null" json:"role"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex:idx_role_email;not null" json:"email"`
	PhoneNumber  string    `gorm:"index" json:"phoneNumber,omitempty"`
	Address      string    `json:"address,omitempty"`
	Country      string    `json:"country,omitempty"`
	City         string    `json:"city,omitempty"`
	PinCode      string    `json:"pinCode,omitempty"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `gorm:"<-:create" json:"createdAt"`
}

// Document is the whole persisted aggregate, one field per collection.
// A nil collection means "not present" and is left untouched on import.
type Document struct {
	Emergencies []Emergency `json:"emergencies"`
	Users       []Account   `json:"users"`
	Admins      []Account   `json:"admins"`
	Volunteers  []Account   `json:"volunteers"`
	Agencies    []Account   `json:"agencies"`
}

// Accounts returns the collection for role
func (d *Document) Accounts(role Role) []Account {
	switch role {
	case RoleUser:
		return d.Users
	case RoleAdmin:
		return d.Admins
	case RoleVolunteer:
		return d.Volunteers
	case RoleAgency:
		return d.Agencies
	}
	return nil
}

// SetAccounts replaces the collection for role
func (d *Document) SetAccounts(role Role, accounts []Account) {
	switch role {
	case RoleUser:
		d.Users = accounts
	case RoleAdmin:
		d.Admins = accounts
	case RoleVolunteer:
		d.Volunteers = accounts
	case RoleAgency:
		d.Agencies = accounts
	}
}
