package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/overnite/manifest-backend/pkg/enums"
)

// ManifestInfo is the header of a shipment batch.
type ManifestInfo struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Date         time.Time      `gorm:"column:date;type:date;not null"`
	AwbNo        string         `gorm:"column:awb_no;not null"`
	From         string         `gorm:"column:from;not null"`
	To           string         `gorm:"column:to;not null"`
	Flt          *string        `gorm:"column:flt"`
	ManifestNo   string         `gorm:"column:manifest_no;not null;uniqueIndex"`
	UserID       uuid.UUID      `gorm:"column:user_id;type:uuid;not null"`
	DeliveryDate *time.Time     `gorm:"column:delivery_date;type:date"`
	Lists        []ManifestList `gorm:"foreignKey:ManifestInfoID"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (m *ManifestInfo) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Status derives the shipment state from delivery_date.
func (m ManifestInfo) Status() enums.ShipmentStatus {
	if m.DeliveryDate != nil {
		return enums.ShipmentStatusDelivered
	}
	return enums.ShipmentStatusPending
}
