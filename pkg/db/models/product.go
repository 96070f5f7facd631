package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/mknind/backoffice/pkg/db/types"
)

// Variant is an element of a product's embedded variant list.
type Variant struct {
	ID     uuid.UUID       `json:"id"`
	Weight string          `json:"weight"`
	Price  decimal.Decimal `json:"price"`
}

type Product struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductName  string            `gorm:"column:product_name;not null" json:"productName"`
	Description  string            `gorm:"column:description;not null;default:''" json:"description"`
	Status       bool              `gorm:"column:status;not null;default:true" json:"status"`
	TopSeller    bool              `gorm:"column:top_seller;not null;default:false" json:"topSeller"`
	HideFromShop bool              `gorm:"column:hide_from_shop;not null;default:false" json:"hideFromShop"`
	Variants     []Variant         `gorm:"column:variants;type:jsonb;serializer:json;not null" json:"variants"`
	Images       []string          `gorm:"column:images;type:jsonb;serializer:json;not null" json:"images"`
	CategoryIDs  dbtypes.UUIDArray `gorm:"column:category_ids;type:uuid[];not null" json:"categories"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Variants == nil {
		p.Variants = []Variant{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.CategoryIDs == nil {
		p.CategoryIDs = dbtypes.UUIDArray{}
	}
	return nil
}

// FindVariant scans the embedded list for id.
func (p *Product) FindVariant(id uuid.UUID) (Variant, bool) {
	if p == nil {
		return Variant{}, false
	}
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
