package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the tenant every User and, indirectly, every dispatch record
// belongs to. A dispatch task is scoped to a single depot/vehicle/order
// set, not to a tenant, so Company only backs the
// auth guard in front of the dispatch API.
type Company struct {
	ID         string `json:"id" gorm:"primaryKey;type:uuid"`
	Name       string `json:"name" gorm:"size:200;not null"`
	Email      string `json:"email" gorm:"size:200;not null;uniqueIndex"`
	Phone      string `json:"phone" gorm:"size:50"`
	Address    string `json:"address" gorm:"size:300"`
	City       string `json:"city" gorm:"size:100"`
	Province   string `json:"province" gorm:"size:100"`
	PostalCode string `json:"postal_code" gorm:"size:20"`
	Country    string `json:"country" gorm:"size:100;default:Indonesia"`

	NPWP        string `json:"npwp" gorm:"size:30"`
	SIUP        string `json:"siup" gorm:"size:50"`
	SKT         string `json:"skt" gorm:"size:50"`
	PKP         bool   `json:"pkp" gorm:"default:false"`
	CompanyType string `json:"company_type" gorm:"size:10"`

	Industry         string `json:"industry" gorm:"size:100"`
	FleetSize        int    `json:"fleet_size" gorm:"default:0"`
	MaxVehicles      int    `json:"max_vehicles" gorm:"default:0"`
	SubscriptionTier string `json:"subscription_tier" gorm:"size:30;default:basic"`

	Status   string `json:"status" gorm:"size:20;default:active"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
	Settings JSON   `json:"settings" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns a UUID if one wasn't set explicitly (seed data pins
// fixed ids; everything else gets a fresh one).
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
