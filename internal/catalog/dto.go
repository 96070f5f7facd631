package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mknind/backoffice/pkg/db/models"
	dbtypes "github.com/mknind/backoffice/pkg/db/types"
)

// AddressInput is an address as written by the client. A missing id means
// a new address; a supplied id is kept so orders that point at it stay
// resolvable.
type AddressInput struct {
	ID      *uuid.UUID `json:"id,omitempty"`
	Address string     `json:"address" validate:"required"`
	Pincode string     `json:"pincode" validate:"required"`
	City    string     `json:"city" validate:"required"`
	State   string     `json:"state" validate:"required"`
	Country string     `json:"country" validate:"required"`
}

type CustomerInput struct {
	FirstName string         `json:"firstName" validate:"required"`
	LastName  string         `json:"lastName" validate:"required"`
	Email     string         `json:"email" validate:"required,email"`
	Phone     string         `json:"phone" validate:"required,min=7,max=20"`
	Addresses []AddressInput `json:"addresses" validate:"omitempty,dive"`
}

type VariantInput struct {
	ID     *uuid.UUID      `json:"id,omitempty"`
	Weight string          `json:"weight" validate:"required"`
	Price  decimal.Decimal `json:"price"`
}

type ProductInput struct {
	ProductName  string         `json:"productName" validate:"required"`
	Description  string         `json:"description"`
	Status       *bool          `json:"status,omitempty"`
	TopSeller    bool           `json:"topSeller"`
	HideFromShop bool           `json:"hideFromShop"`
	Variants     []VariantInput `json:"variants" validate:"omitempty,dive"`
	Images       []string       `json:"images" validate:"omitempty,dive,required"`
	Categories   []uuid.UUID    `json:"categories"`
}

func (in CustomerInput) apply(c *models.Customer) {
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.Addresses = make([]models.Address, 0, len(in.Addresses))
	for _, a := range in.Addresses {
		c.Addresses = append(c.Addresses, models.Address{
			ID:      idOrNew(a.ID),
			Address: a.Address,
			Pincode: a.Pincode,
			City:    a.City,
			State:   a.State,
			Country: a.Country,
		})
	}
}

func (in ProductInput) apply(p *models.Product) {
	p.ProductName = in.ProductName
	p.Description = in.Description
	p.Status = true
	if in.Status != nil {
		p.Status = *in.Status
	}
	p.TopSeller = in.TopSeller
	p.HideFromShop = in.HideFromShop
	p.Variants = make([]models.Variant, 0, len(in.Variants))
	for _, v := range in.Variants {
		p.Variants = append(p.Variants, models.Variant{
			ID:     idOrNew(v.ID),
			Weight: v.Weight,
			Price:  v.Price,
		})
	}
	p.Images = append([]string{}, in.Images...)
	p.CategoryIDs = append(dbtypes.UUIDArray{}, uniqueIDs(in.Categories)...)
}

func idOrNew(id *uuid.UUID) uuid.UUID {
	if id != nil && *id != uuid.Nil {
		return *id
	}
	return uuid.New()
}
