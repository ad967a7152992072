package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is an issued access/refresh token pair, tracked so it can be
// listed and revoked independently of JWT expiry.
type Session struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       string    `json:"user_id" gorm:"type:uuid;not null;index"`
	Token        string    `json:"-" gorm:"size:500;not null;index"`
	RefreshToken string    `json:"-" gorm:"size:500;not null;index"`
	UserAgent    string    `json:"user_agent" gorm:"size:300"`
	IPAddress    string    `json:"ip_address" gorm:"size:50"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a UUID if one wasn't set explicitly.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// PasswordResetToken is a one-time token issued by ForgotPassword and
// consumed by ResetPassword.
type PasswordResetToken struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string     `json:"user_id" gorm:"type:uuid;not null;index"`
	Token     string     `json:"-" gorm:"size:100;not null;uniqueIndex"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate assigns a UUID if one wasn't set explicitly.
func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// AuditLog records a security-relevant action against a company's account,
// independent of the dispatch Task audit trail.
type AuditLog struct {
	ID string `json:"id" gorm:"primaryKey;type:uuid"`
	// CompanyID/UserID are nullable: audited events include unauthenticated
	// ones (failed logins, oracle failures) with no tenant attached.
	CompanyID  string    `json:"company_id" gorm:"size:36;index"`
	UserID     string    `json:"user_id" gorm:"size:36;index"`
	Action     string    `json:"action" gorm:"size:100;not null"`
	Resource   string    `json:"resource" gorm:"size:100"`
	ResourceID string    `json:"resource_id" gorm:"size:100"`
	Details    JSON      `json:"details" gorm:"type:jsonb"`
	IPAddress  string    `json:"ip_address" gorm:"size:50"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate assigns a UUID if one wasn't set explicitly.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
