package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/pkg/enums"
)

// Client is both a consignor on manifest lines and an authenticated principal.
type Client struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	CompanyName    string           `gorm:"column:company_name;not null"`
	Email          string           `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash   string           `gorm:"column:password_hash;not null"`
	Role           enums.ClientRole `gorm:"column:role;type:client_role;not null;default:client"`
	ShippingPlanID *uuid.UUID       `gorm:"column:shipping_plan_id;type:uuid"`
	ShippingPlan   *ShippingPlan    `gorm:"foreignKey:ShippingPlanID"`
	IsActive       bool             `gorm:"column:is_active;not null;default:true"`
	LastLoginAt    *time.Time       `gorm:"column:last_login_at"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Role == "" {
		c.Role = enums.ClientRoleClient
	}
	return nil
}
