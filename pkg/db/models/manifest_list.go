package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ManifestList is one consignment line of a manifest.
type ManifestList struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ManifestInfoID uuid.UUID           `gorm:"column:manifest_info_id;type:uuid;not null;index"`
	ConsignorID    uuid.UUID           `gorm:"column:consignor_id;type:uuid;not null;index"`
	Consignor      *Client             `gorm:"foreignKey:ConsignorID"`
	ConsigneeName  string              `gorm:"column:consignee_name;not null"`
	CnNo           string              `gorm:"column:cn_no;not null;index"`
	Pcs            int                 `gorm:"column:pcs;not null"`
	Kg             int                 `gorm:"column:kg;not null"`
	Gram           int                 `gorm:"column:gram;not null;default:0"`
	TotalPrice     decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	Discount       decimal.NullDecimal `gorm:"column:discount;type:numeric(5,2)"`
	Origin         string              `gorm:"column:origin;not null"`
	Destination    string              `gorm:"column:destination;not null"`
	Remarks        *string             `gorm:"column:remarks"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (l *ManifestList) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (l *ManifestList) BeforeSave(*gorm.DB) error {
	l.Origin = NormalizeLocation(l.Origin)
	l.Destination = NormalizeLocation(l.Destination)
	return nil
}

// Weight recombines whole kilograms and grams into decimal kilograms.
func (l ManifestList) Weight() decimal.Decimal {
	return decimal.NewFromInt(int64(l.Kg)).Add(decimal.NewFromInt(int64(l.Gram)).Div(decimal.NewFromInt(1000)))
}
