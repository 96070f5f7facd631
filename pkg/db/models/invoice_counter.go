package models

// InvoiceCounter backs the database flavour of the invoice sequence.
type InvoiceCounter struct {
	Name  string `gorm:"column:name;primaryKey"`
	Value int64  `gorm:"column:value;not null"`
}

func (InvoiceCounter) TableName() string { return "invoice_counters" }
