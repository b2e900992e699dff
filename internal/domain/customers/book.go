package customers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"capworks/internal/domain/validation"
)

// Book is the customer database with its orders and payment records.
type Book struct {
	mu        sync.Mutex
	customers []Customer
	orders    []Order
	payments  []Payment
	now       func() time.Time
}

func NewBook() *Book {
	return &Book{now: time.Now}
}

func (b *Book) AddCustomer(c Customer) (Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Location = strings.TrimSpace(c.Location)

	var v validation.Collector
	v.Required("name", c.Name)
	v.Required("phone", c.Phone)
	v.Required("location", c.Location)
	if err := v.Err(); err != nil {
		return Customer{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = b.now().UTC()
	b.customers = append(b.customers, c)
	return c, nil
}

// UpdateCustomer replaces the editable fields of a customer.
func (b *Book) UpdateCustomer(id string, c Customer) (Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Location = strings.TrimSpace(c.Location)

	var v validation.Collector
	v.Required("name", c.Name)
	v.Required("phone", c.Phone)
	v.Required("location", c.Location)
	if err := v.Err(); err != nil {
		return Customer{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.customerIndex(id)
	if idx < 0 {
		return Customer{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
	}
	c.ID = id
	c.CreatedAt = b.customers[idx].CreatedAt
	b.customers[idx] = c
	return c, nil
}

// RemoveCustomer deletes the customer only; its orders and payments stay on
// record.
func (b *Book) RemoveCustomer(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, c := range b.customers {
		if c.ID == id {
			b.customers = append(b.customers[:i], b.customers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
}

func (b *Book) Customer(id string) (Customer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if idx := b.customerIndex(id); idx >= 0 {
		return b.customers[idx], nil
	}
	return Customer{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, id)
}

// Customers lists customers matching term under filter. Unknown filters
// match everything.
func (b *Book) Customers(filter, term string) []Customer {
	needle := strings.ToLower(strings.TrimSpace(term))

	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Customer, 0, len(b.customers))
	for _, c := range b.customers {
		if needle != "" && !matches(c, filter, needle) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matches(c Customer, filter, needle string) bool {
	switch filter {
	case FilterName, "":
		return strings.Contains(strings.ToLower(c.Name), needle)
	case FilterLocation:
		return strings.Contains(strings.ToLower(c.Location), needle)
	case FilterContact:
		return strings.Contains(c.Phone, needle) || strings.Contains(strings.ToLower(c.Email), needle)
	default:
		return true
	}
}

func (b *Book) CreateOrder(customerID, items string) (Order, error) {
	var v validation.Collector
	v.Required("customerId", customerID)
	v.Required("items", items)
	if err := v.Err(); err != nil {
		return Order{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.customerIndex(customerID) < 0 {
		return Order{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, customerID)
	}
	order := Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Items:      strings.TrimSpace(items),
		Status:     OrderStatusPending,
		CreatedAt:  b.now().UTC(),
	}
	b.orders = append(b.orders, order)
	return order, nil
}

func (b *Book) UpdateOrderStatus(orderID, status string) (Order, error) {
	if !oneOf(status, OrderStatuses) {
		return Order{}, validation.New("status")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.orderIndex(orderID)
	if idx < 0 {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	b.orders[idx].Status = status
	return b.orders[idx], nil
}

// ConfirmDelivery marks the order delivered with the given details.
func (b *Book) ConfirmDelivery(orderID, details string) (Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.orderIndex(orderID)
	if idx < 0 {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	deliveredAt := b.now().UTC()
	b.orders[idx].Status = OrderStatusDelivered
	b.orders[idx].DeliveryDetails = strings.TrimSpace(details)
	b.orders[idx].DeliveredAt = &deliveredAt
	return b.orders[idx], nil
}

func (b *Book) Orders() []Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Order(nil), b.orders...)
}

func (b *Book) RecordPayment(p Payment) (Payment, error) {
	var v validation.Collector
	v.Required("customerId", p.CustomerID)
	if p.TotalAmount.IsNegative() {
		v.Add("totalAmount")
	}
	if p.ReceivedAmount.IsNegative() {
		v.Add("receivedAmount")
	}
	if !oneOf(p.Mode, PaymentModes) {
		v.Add("mode")
	}
	if err := v.Err(); err != nil {
		return Payment{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.customerIndex(p.CustomerID) < 0 {
		return Payment{}, fmt.Errorf("%w: %s", ErrCustomerNotFound, p.CustomerID)
	}
	p.ID = uuid.NewString()
	p.Reference = strings.TrimSpace(p.Reference)
	p.CreatedAt = b.now().UTC()
	b.payments = append(b.payments, p)
	return p, nil
}

func (b *Book) Payment(id string) (Payment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return Payment{}, fmt.Errorf("%w: %s", ErrPaymentNotFound, id)
}

func (b *Book) Payments() []Payment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Payment(nil), b.payments...)
}

// Totals returns order counts and the amount received across all payments.
func (b *Book) Totals() (orders, pending int, received decimal.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	received = decimal.Zero
	for _, o := range b.orders {
		if o.Status == OrderStatusPending {
			pending++
		}
	}
	for _, p := range b.payments {
		received = received.Add(p.ReceivedAmount)
	}
	return len(b.orders), pending, received
}

func (b *Book) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return State{
		Customers: append([]Customer{}, b.customers...),
		Orders:    append([]Order{}, b.orders...),
		Payments:  append([]Payment{}, b.payments...),
	}
}

func (b *Book) Restore(state State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.customers = append([]Customer(nil), state.Customers...)
	b.orders = append([]Order(nil), state.Orders...)
	b.payments = append([]Payment(nil), state.Payments...)
}

func (b *Book) customerIndex(id string) int {
	for i, c := range b.customers {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (b *Book) orderIndex(id string) int {
	for i, o := range b.orders {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
