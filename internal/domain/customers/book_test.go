package customers

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"capworks/internal/domain/validation"
)

func addCustomer(t *testing.T, b *Book, name, phone, email, location string) Customer {
	t.Helper()
	c, err := b.AddCustomer(Customer{Name: name, Phone: phone, Email: email, Location: location})
	if err != nil {
		t.Fatalf("add customer: %v", err)
	}
	return c
}

func TestAddCustomerValidation(t *testing.T) {
	b := NewBook()
	_, err := b.AddCustomer(Customer{Name: "Asha Traders"})
	fields := validation.Fields(err)
	if len(fields) != 2 || fields[0] != "phone" || fields[1] != "location" {
		t.Fatalf("expected phone and location issues, got %v", fields)
	}
	if len(b.Customers("", "")) != 0 {
		t.Fatal("expected no customer to be stored")
	}
}

func TestCustomersFilter(t *testing.T) {
	b := NewBook()
	addCustomer(t, b, "Asha Traders", "9000011111", "asha@example.com", "Kanpur")
	addCustomer(t, b, "Bharat Caps", "9888822222", "", "Lucknow")

	tests := []struct {
		name   string
		filter string
		term   string
		want   string
	}{
		{name: "by name", filter: FilterName, term: "bharat", want: "Bharat Caps"},
		{name: "by location", filter: FilterLocation, term: "KANPUR", want: "Asha Traders"},
		{name: "by phone", filter: FilterContact, term: "98888", want: "Bharat Caps"},
		{name: "by email", filter: FilterContact, term: "ASHA@", want: "Asha Traders"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := b.Customers(tc.filter, tc.term)
			if len(got) != 1 || got[0].Name != tc.want {
				t.Fatalf("expected %s, got %+v", tc.want, got)
			}
		})
	}

	if got := b.Customers(FilterName, ""); len(got) != 2 {
		t.Fatalf("expected empty term to list all, got %d", len(got))
	}
}

func TestOrderLifecycle(t *testing.T) {
	b := NewBook()
	c := addCustomer(t, b, "Asha Traders", "1", "", "Kanpur")

	order, err := b.CreateOrder(c.ID, "10 dozen Net Cap")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}

	if _, err := b.UpdateOrderStatus(order.ID, "Lost"); !validation.Is(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	updated, err := b.UpdateOrderStatus(order.ID, OrderStatusDispatched)
	if err != nil || updated.Status != OrderStatusDispatched {
		t.Fatalf("expected dispatched, got %+v (%v)", updated, err)
	}

	delivered, err := b.ConfirmDelivery(order.ID, "Received by shop owner")
	if err != nil {
		t.Fatalf("confirm delivery: %v", err)
	}
	if delivered.Status != OrderStatusDelivered || delivered.DeliveredAt == nil || delivered.DeliveryDetails != "Received by shop owner" {
		t.Fatalf("unexpected delivered order %+v", delivered)
	}

	if _, err := b.CreateOrder("missing", "x"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
	if _, err := b.ConfirmDelivery("missing", ""); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestPaymentsAndTotals(t *testing.T) {
	b := NewBook()
	c := addCustomer(t, b, "Asha Traders", "1", "", "Kanpur")
	_, _ = b.CreateOrder(c.ID, "5 dozen Plane Cap")
	second, _ := b.CreateOrder(c.ID, "2 dozen Puma Cap")
	_, _ = b.UpdateOrderStatus(second.ID, OrderStatusProcessing)

	p, err := b.RecordPayment(Payment{
		CustomerID:     c.ID,
		TotalAmount:    decimal.NewFromInt(1500),
		ReceivedAmount: decimal.NewFromInt(1000),
		Mode:           PaymentModeUPI,
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if !p.Outstanding().Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected outstanding 500, got %s", p.Outstanding())
	}

	_, err = b.RecordPayment(Payment{CustomerID: c.ID, TotalAmount: decimal.NewFromInt(-1), Mode: "Cheque"})
	fields := validation.Fields(err)
	if len(fields) != 2 || fields[0] != "totalAmount" || fields[1] != "mode" {
		t.Fatalf("expected totalAmount and mode issues, got %v", fields)
	}

	orders, pending, received := b.Totals()
	if orders != 2 || pending != 1 || !received.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("unexpected totals orders=%d pending=%d received=%s", orders, pending, received)
	}

	if _, err := b.Payment(p.ID); err != nil {
		t.Fatalf("lookup payment: %v", err)
	}
	if _, err := b.Payment("missing"); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestRemoveCustomerKeepsHistory(t *testing.T) {
	b := NewBook()
	c := addCustomer(t, b, "Asha Traders", "1", "", "Kanpur")
	_, _ = b.CreateOrder(c.ID, "1 dozen")

	if err := b.RemoveCustomer(c.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(b.Orders()) != 1 {
		t.Fatal("expected order history to remain")
	}
	if err := b.RemoveCustomer(c.ID); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}

	restored := NewBook()
	restored.Restore(b.State())
	if len(restored.Orders()) != 1 || len(restored.Customers("", "")) != 0 {
		t.Fatal("unexpected restored state")
	}
}

func TestUpdateCustomer(t *testing.T) {
	b := NewBook()
	c := addCustomer(t, b, "Asha Traders", "98450", "", "Mysore")

	updated, err := b.UpdateCustomer(c.ID, Customer{Name: " Asha Caps ", Phone: "98450", Location: "Mandya"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Asha Caps" || updated.Location != "Mandya" || !updated.CreatedAt.Equal(c.CreatedAt) || updated.ID != c.ID {
		t.Fatalf("unexpected update: %+v", updated)
	}
	if _, err := b.UpdateCustomer(c.ID, Customer{Name: "x"}); !validation.Is(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := b.UpdateCustomer("missing", Customer{Name: "x", Phone: "1", Location: "y"}); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}
