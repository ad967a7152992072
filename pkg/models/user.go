package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const maxFailedLoginAttempts = 5
const accountLockDuration = 15 * time.Minute

// User is an account in a Company, authenticated via the bearer-token
// lifecycle that guards the dispatch API (submit/poll/geocode).
type User struct {
	ID        string `json:"id" gorm:"primaryKey;type:uuid"`
	CompanyID string `json:"company_id" gorm:"type:uuid;not null;index"`
	Email     string `json:"email" gorm:"size:200;not null;uniqueIndex"`
	Username  string `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Password  string `json:"-" gorm:"size:200;not null"`

	FirstName string `json:"first_name" gorm:"size:100;not null"`
	LastName  string `json:"last_name" gorm:"size:100;not null"`
	Phone     string `json:"phone" gorm:"size:50"`

	NIK        string `json:"nik" gorm:"size:20"`
	Address    string `json:"address" gorm:"size:300"`
	City       string `json:"city" gorm:"size:100"`
	Province   string `json:"province" gorm:"size:100"`
	PostalCode string `json:"postal_code" gorm:"size:20"`

	Role        string `json:"role" gorm:"size:30;not null;index"`
	Permissions JSON   `json:"permissions" gorm:"type:jsonb"`

	Status             string `json:"status" gorm:"size:20;default:active"`
	IsActive           bool   `json:"is_active" gorm:"default:true"`
	IsVerified         bool   `json:"is_verified" gorm:"default:false"`
	MustChangePassword bool   `json:"must_change_password" gorm:"default:false"`

	EmailVerificationToken string `json:"-" gorm:"size:100"`
	PasswordChangedAt      time.Time `json:"password_changed_at"`
	FailedLoginAttempts    int        `json:"-" gorm:"default:0"`
	LockedUntil            *time.Time `json:"-"`

	Language string `json:"language" gorm:"size:10;default:id"`
	Timezone string `json:"timezone" gorm:"size:50;default:Asia/Jakarta"`

	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a UUID if needed and hashes a plaintext password.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return u.hashPasswordIfPlaintext()
}

// BeforeUpdate re-hashes Password whenever it's been set to a new plaintext
// value, so callers can do `user.Password = newPassword; db.Save(&user)`.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	return u.hashPasswordIfPlaintext()
}

func (u *User) hashPasswordIfPlaintext() error {
	if u.Password == "" || looksHashed(u.Password) {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func looksHashed(password string) bool {
	return strings.HasPrefix(password, "$2a$") || strings.HasPrefix(password, "$2b$") || strings.HasPrefix(password, "$2y$")
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// IsAccountLocked reports whether repeated failed logins have locked the
// account.
func (u *User) IsAccountLocked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// IncrementFailedAttempts records a failed login and locks the account once
// the threshold is reached.
func (u *User) IncrementFailedAttempts() {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxFailedLoginAttempts {
		until := time.Now().Add(accountLockDuration)
		u.LockedUntil = &until
	}
}

// ResetFailedAttempts clears the failed-login counter and any lock.
func (u *User) ResetFailedAttempts() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
}

// UpdateLastLogin stamps the current time as the user's last successful
// login.
func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// GetFullName joins FirstName and LastName for display and invitation
// emails.
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
