package enums

import "fmt"

// TicketStatus is the state of a support ticket.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "pending"
	TicketStatusResolved TicketStatus = "resolved"
)

func (s TicketStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known TicketStatus.
func (s TicketStatus) IsValid() bool {
	return s == TicketStatusPending || s == TicketStatusResolved
}

// ParseTicketStatus converts raw input into a TicketStatus.
func ParseTicketStatus(value string) (TicketStatus, error) {
	status := TicketStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid ticket status %q", value)
	}
	return status, nil
}
