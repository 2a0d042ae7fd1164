package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"farmcloud/internal/apperrors"
)

type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Username    string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email       string     `json:"email" gorm:"size:254"`
	FirstName   string     `json:"first_name" gorm:"size:150"`
	LastName    string     `json:"last_name" gorm:"size:150"`
	Password    string     `json:"-" gorm:"size:128;not null"`
	Role        UserRole   `json:"role" gorm:"size:20;not null;index"`
	Status      UserStatus `json:"status" gorm:"size:20;not null"`
	IsActive    bool       `json:"is_active"`
	IsSuperuser bool       `json:"-"`
	PhoneNumber string     `json:"phone_number" gorm:"size:20"`
	Avatar      string     `json:"avatar" gorm:"size:1"`
	DateJoined  time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin   *time.Time `json:"last_login"`
	UpdatedAt   time.Time  `json:"-"`
}

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleManager  UserRole = "MANAGER"
	RoleStaff    UserRole = "STAFF"
	RoleDelivery UserRole = "DELIVERY"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RoleDelivery:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive   UserStatus = "ACTIVE"
	UserInactive UserStatus = "INACTIVE"
)

func (u *User) ApplyDefaults() {
	if u.Role == "" {
		u.Role = RoleStaff
	}
	if u.Status == "" {
		u.Status = UserActive
	}
}

// SyncActive mirrors Status into IsActive.
func (u *User) SyncActive() {
	u.IsActive = u.Status == UserActive
}

// ToggleStatus flips between ACTIVE and INACTIVE.
func (u *User) ToggleStatus() {
	if u.Status == UserActive {
		u.Status = UserInactive
	} else {
		u.Status = UserActive
	}
	u.SyncActive()
}

// EnsureAvatar derives the avatar letter once; a set avatar is never recomputed.
func (u *User) EnsureAvatar() {
	if u.Avatar != "" {
		return
	}
	for _, source := range []string{u.FirstName, u.Username} {
		if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(source)); r != utf8.RuneError {
			u.Avatar = string(unicode.ToUpper(r))
			return
		}
	}
}

func (u *User) FullName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}

// LastLoginDisplay renders LastLogin relative to now.
func (u *User) LastLoginDisplay(now time.Time) string {
	if u.LastLogin == nil {
		return "Never"
	}
	diff := now.Sub(*u.LastLogin)
	switch {
	case diff < time.Hour:
		if minutes := int(diff.Minutes()); minutes > 0 {
			return fmt.Sprintf("%d min ago", minutes)
		}
		return "Just now"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	default:
		return u.LastLogin.Format("Jan 02, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s ago", n, unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

func (u *User) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(u.Username) == "" {
		verr.Add("username", "is required")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			verr.Add("email", "must be a valid email address")
		}
	}
	if !u.Role.Valid() {
		verr.Add("role", "is not a valid choice")
	}
	if u.Status != UserActive && u.Status != UserInactive {
		verr.Add("status", "is not a valid choice")
	}
	if utf8.RuneCountInString(u.Avatar) > 1 {
		verr.Add("avatar", "must be a single character")
	}
	return verr.Err()
}
