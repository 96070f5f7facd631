package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mknind/backoffice/pkg/enums"
)

// CustomerInfo is the contact snapshot taken when a ticket is raised. Later
// customer edits do not change it.
type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type SupportTicket struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerID   uuid.UUID          `gorm:"column:customer_id;type:uuid;not null;index:ix_support_tickets_customer" json:"customerId"`
	Title        string             `gorm:"column:title;not null" json:"title"`
	Description  string             `gorm:"column:description;not null" json:"description"`
	Status       enums.TicketStatus `gorm:"column:status;not null" json:"status"`
	CustomerInfo CustomerInfo       `gorm:"column:customer_info;type:jsonb;serializer:json;not null" json:"customerInfo"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SupportTicket) TableName() string { return "support_tickets" }

func (t *SupportTicket) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = enums.TicketStatusPending
	}
	return nil
}

// CustomerInfoOf snapshots the contact fields of c.
func CustomerInfoOf(c Customer) CustomerInfo {
	return CustomerInfo{FirstName: c.FirstName, LastName: c.LastName, Email: c.Email, Phone: c.Phone}
}
