package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is an element of a customer's embedded address list. It has no
// lifecycle of its own and is only reachable through its customer.
type Address struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address"`
	Pincode string    `json:"pincode"`
	City    string    `json:"city"`
	State   string    `json:"state"`
	Country string    `json:"country"`
}

type Customer struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirstName string    `gorm:"column:first_name;not null" json:"firstName"`
	LastName  string    `gorm:"column:last_name;not null" json:"lastName"`
	Email     string    `gorm:"column:email;not null;uniqueIndex:ux_customers_email" json:"email"`
	Phone     string    `gorm:"column:phone;not null;uniqueIndex:ux_customers_phone" json:"phone"`
	Addresses []Address `gorm:"column:addresses;type:jsonb;serializer:json;not null" json:"addresses"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Addresses == nil {
		c.Addresses = []Address{}
	}
	return nil
}

// FindAddress scans the embedded list for id.
func (c *Customer) FindAddress(id uuid.UUID) (Address, bool) {
	if c == nil {
		return Address{}, false
	}
	for _, addr := range c.Addresses {
		if addr.ID == id {
			return addr, true
		}
	}
	return Address{}, false
}
