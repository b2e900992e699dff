package customers

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Phone       string     `json:"phone"`
	Email       string     `json:"email,omitempty"`
	Location    string     `json:"location"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type Order struct {
	ID              string     `json:"id"`
	CustomerID      string     `json:"customerId"`
	Items           string     `json:"items"`
	Status          string     `json:"status"`
	DeliveryDetails string     `json:"deliveryDetails,omitempty"`
	DeliveredAt     *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type Payment struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customerId"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ReceivedAmount decimal.Decimal `json:"receivedAmount"`
	Mode           string          `json:"mode"`
	Reference      string          `json:"reference,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// Outstanding is the unpaid remainder of the payment record.
func (p Payment) Outstanding() decimal.Decimal {
	return p.TotalAmount.Sub(p.ReceivedAmount)
}

type State struct {
	Customers []Customer `json:"customers"`
	Orders    []Order    `json:"orders"`
	Payments  []Payment  `json:"payments"`
}
