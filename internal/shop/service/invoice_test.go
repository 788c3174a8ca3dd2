package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"github.com/jalalon11/vsmartnewsms/internal/shop/testutil"
	"github.com/shopspring/decimal"
)

// completedOrder builds a completed repair order with labor 230 + parts 50.
func completedOrder(t *testing.T, f *orderFixture) *entity.RepairOrder {
	t.Helper()
	order := f.createOrder(t, CreateOrderRequest{
		Services: []ServiceLineInput{
			{ServiceID: f.screen.ID},
			{ServiceID: f.battery.ID},
		},
		Parts:            []PartLineInput{{PartID: f.part.ID, Quantity: 2, UnitPrice: 25}},
		IssueDescription: "billed job",
	})
	order, err := f.svc.Order.UpdateStatus(context.Background(), order.ID, entity.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	return order
}

func TestGenerateInvoiceFromOrder(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("GenerateFromOrder failed: %v", err)
	}

	wantNumber := fmt.Sprintf("INV-%s-0001", time.Now().Format("200601"))
	if invoice.InvoiceNumber != wantNumber {
		t.Fatalf("expected invoice number %s, got %s", wantNumber, invoice.InvoiceNumber)
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(280)) {
		t.Fatalf("expected subtotal 280, got %s", invoice.Subtotal)
	}
	if !invoice.TotalAmount.Equal(decimal.NewFromInt(280)) {
		t.Fatalf("expected total 280, got %s", invoice.TotalAmount)
	}
	if !invoice.BalanceDue.Equal(decimal.NewFromInt(280)) {
		t.Fatalf("expected balance 280, got %s", invoice.BalanceDue)
	}
	if invoice.Status != entity.InvoiceStatusPending {
		t.Fatalf("expected pending, got %s", invoice.Status)
	}
	if invoice.CustomerID != f.customer.ID {
		t.Fatalf("expected customer %s, got %s", f.customer.ID, invoice.CustomerID)
	}

	wantDue := invoice.IssueDate.AddDate(0, 0, defaultPaymentTermDays)
	if !invoice.DueDate.Equal(wantDue) {
		t.Fatalf("expected due date %s, got %s", wantDue, invoice.DueDate)
	}
}

func TestGenerateInvoiceIsIdempotent(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	first, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	second, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected the same invoice, got %s and %s", first.ID, second.ID)
	}
}

func TestGenerateInvoiceEligibility(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()

	// order still pending
	pending := f.createOrder(t, CreateOrderRequest{
		Services:         []ServiceLineInput{{ServiceID: f.screen.ID}},
		IssueDescription: "not finished",
	})
	if _, err := f.svc.Invoice.GenerateFromOrder(ctx, pending.ID, "user-1"); !errors.Is(err, ErrOrderNotEligible) {
		t.Fatalf("expected ErrOrderNotEligible for pending order, got %v", err)
	}

	// completed order with nothing billable
	free := testutil.SeedService(t, f.db, "Free Inspection", 0, 15)
	zero := f.createOrder(t, CreateOrderRequest{
		Services:         []ServiceLineInput{{ServiceID: free.ID}},
		IssueDescription: "goodwill check",
	})
	if _, err := f.svc.Order.UpdateStatus(ctx, zero.ID, entity.OrderStatusCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if _, err := f.svc.Invoice.GenerateFromOrder(ctx, zero.ID, "user-1"); !errors.Is(err, ErrOrderNotEligible) {
		t.Fatalf("expected ErrOrderNotEligible for zero-cost order, got %v", err)
	}
}

func TestCreateInvoiceConflict(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	if _, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, err := f.svc.Invoice.Create(ctx, CreateInvoiceRequest{RepairOrderID: order.ID}, "user-1")
	if !errors.Is(err, ErrInvoiceAlreadyExists) {
		t.Fatalf("expected ErrInvoiceAlreadyExists, got %v", err)
	}
}

func TestCreateInvoiceWithDiscount(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.Create(ctx, CreateInvoiceRequest{
		RepairOrderID:  order.ID,
		DiscountAmount: 30,
		DueDate:        "2030-01-15",
	}, "user-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !invoice.TotalAmount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected total 250 after discount, got %s", invoice.TotalAmount)
	}
	if invoice.DueDate.UTC().Format("2006-01-02") != "2030-01-15" {
		t.Fatalf("expected due date 2030-01-15, got %s", invoice.DueDate)
	}
}

func TestAddPaymentLifecycle(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// partial payment: 100 of 280
	invoice, err = f.svc.Invoice.AddPayment(ctx, invoice.ID, AddPaymentRequest{
		Amount:        100,
		PaymentMethod: entity.PaymentCash,
	}, "user-1")
	if err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
	if !invoice.IsPartiallyPaid() {
		t.Fatalf("expected partially_paid, got %s", invoice.Status)
	}
	if !invoice.AmountPaid.Equal(decimal.NewFromInt(100)) || !invoice.BalanceDue.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("unexpected paid/balance: %s/%s", invoice.AmountPaid, invoice.BalanceDue)
	}
	if invoice.PaidDate != nil {
		t.Fatal("paid date must stay empty until fully paid")
	}

	// settle the rest
	invoice, err = f.svc.Invoice.AddPayment(ctx, invoice.ID, AddPaymentRequest{
		Amount:          180,
		PaymentMethod:   entity.PaymentBankTransfer,
		ReferenceNumber: "TXN-42",
	}, "user-1")
	if err != nil {
		t.Fatalf("second payment failed: %v", err)
	}
	if invoice.Status != entity.InvoiceStatusPaid {
		t.Fatalf("expected paid, got %s", invoice.Status)
	}
	if !invoice.BalanceDue.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance, got %s", invoice.BalanceDue)
	}
	if invoice.PaidDate == nil {
		t.Fatal("expected paid date stamped")
	}
	if invoice.PaymentMethod != entity.PaymentBankTransfer {
		t.Fatalf("expected last payment method recorded, got %s", invoice.PaymentMethod)
	}

	var payments []entity.Payment
	f.db.Where("invoice_id = ?", invoice.ID).Find(&payments)
	if len(payments) != 2 {
		t.Fatalf("expected 2 payment records, got %d", len(payments))
	}
}

func TestAddPaymentRejectsOverpayment(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	_, err = f.svc.Invoice.AddPayment(ctx, invoice.ID, AddPaymentRequest{
		Amount:        300,
		PaymentMethod: entity.PaymentCash,
	}, "user-1")
	if !errors.Is(err, ErrExceedsBalance) {
		t.Fatalf("expected ErrExceedsBalance, got %v", err)
	}

	// the whole payment was rejected, invoice unchanged
	got, err := f.svc.Invoice.Get(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.AmountPaid.Equal(decimal.Zero) || got.Status != entity.InvoiceStatusPending {
		t.Fatalf("expected untouched invoice, got paid=%s status=%s", got.AmountPaid, got.Status)
	}

	var count int64
	f.db.Model(&entity.Payment{}).Where("invoice_id = ?", invoice.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no payment rows, got %d", count)
	}
}

func TestDeletePaidInvoiceRejected(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := f.svc.Invoice.AddPayment(ctx, invoice.ID, AddPaymentRequest{
		Amount:        280,
		PaymentMethod: entity.PaymentCard,
	}, "user-1"); err != nil {
		t.Fatalf("payment failed: %v", err)
	}

	if err := f.svc.Invoice.Delete(ctx, invoice.ID); !errors.Is(err, ErrInvoicePaid) {
		t.Fatalf("expected ErrInvoicePaid, got %v", err)
	}
}

func TestDeletePendingInvoice(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := f.svc.Invoice.Delete(ctx, invoice.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := f.svc.Invoice.Get(ctx, invoice.ID); err == nil {
		t.Fatal("expected deleted invoice to be gone")
	}
}

func TestRegenerateAfterVoid(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	first, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := f.svc.Invoice.Delete(ctx, first.ID); err != nil {
		t.Fatalf("void failed: %v", err)
	}

	// the voided invoice no longer occupies the order, so a fresh one is issued
	second, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("regenerate after void failed: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a fresh invoice, got the voided one")
	}
	period := time.Now().Format("200601")
	if second.InvoiceNumber != fmt.Sprintf("INV-%s-0002", period) {
		t.Fatalf("expected next number in sequence, got %s", second.InvoiceNumber)
	}
	if second.Status != entity.InvoiceStatusPending || !second.BalanceDue.Equal(decimal.NewFromInt(280)) {
		t.Fatalf("expected a clean pending invoice, got status=%s balance=%s", second.Status, second.BalanceDue)
	}
}

func TestAddPaymentOnCancelledInvoice(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if err := f.db.Model(&entity.Invoice{}).Where("id = ?", invoice.ID).
		Update("status", entity.InvoiceStatusCancelled).Error; err != nil {
		t.Fatalf("cancel invoice: %v", err)
	}

	_, err = f.svc.Invoice.AddPayment(ctx, invoice.ID, AddPaymentRequest{
		Amount:        50,
		PaymentMethod: entity.PaymentCash,
	}, "user-1")
	if !errors.Is(err, ErrInvoiceCancelled) {
		t.Fatalf("expected ErrInvoiceCancelled, got %v", err)
	}

	var count int64
	f.db.Model(&entity.Payment{}).Where("invoice_id = ?", invoice.ID).Count(&count)
	if count != 0 {
		t.Fatalf("expected no payment rows, got %d", count)
	}
}

func TestInvoiceNumbersIncrementWithinMonth(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()

	first, err := f.svc.Invoice.GenerateFromOrder(ctx, completedOrder(t, f).ID, "user-1")
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}

	// second customer/order so the one-invoice-per-order rule is not in play
	other, device := testutil.SeedCustomer(t, f.db)
	order2 := f.createOrder(t, CreateOrderRequest{
		CustomerID:       other.ID,
		DeviceID:         device.ID,
		Services:         []ServiceLineInput{{ServiceID: f.screen.ID}},
		IssueDescription: "second billed job",
	})
	if _, err := f.svc.Order.UpdateStatus(ctx, order2.ID, entity.OrderStatusCompleted); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	second, err := f.svc.Invoice.GenerateFromOrder(ctx, order2.ID, "user-1")
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}

	period := time.Now().Format("200601")
	if first.InvoiceNumber != fmt.Sprintf("INV-%s-0001", period) ||
		second.InvoiceNumber != fmt.Sprintf("INV-%s-0002", period) {
		t.Fatalf("unexpected numbers: %s, %s", first.InvoiceNumber, second.InvoiceNumber)
	}
}

func TestOverdueIsDerivedOnRead(t *testing.T) {
	f := setupOrderFixture(t)
	ctx := context.Background()
	order := completedOrder(t, f)

	invoice, err := f.svc.Invoice.GenerateFromOrder(ctx, order.ID, "user-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// push the due date into the past behind the service's back
	past := time.Now().AddDate(0, 0, -5)
	if err := f.db.Model(&entity.Invoice{}).Where("id = ?", invoice.ID).Update("due_date", past).Error; err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	got, err := f.svc.Invoice.Get(ctx, invoice.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != entity.InvoiceStatusOverdue {
		t.Fatalf("expected overdue, got %s", got.Status)
	}
}
