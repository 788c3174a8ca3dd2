package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"github.com/jalalon11/vsmartnewsms/internal/shop/repository"
	"github.com/jalalon11/vsmartnewsms/internal/shop/testutil"
	"gorm.io/gorm"
)

func setupServices(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewServices(repos, db, nil), db
}

func TestReserveDecrementsStock(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	part := testutil.SeedPart(t, db, "SCR-001", 10, 2)

	updated, err := svc.Part.Reserve(ctx, part.ID, 3, "RO", "order-1", "RO-2026-000001", "user-1")
	if err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}
	if updated.QuantityInStock != 7 {
		t.Fatalf("expected stock 7, got %d", updated.QuantityInStock)
	}

	var movements []entity.StockMovement
	if err := db.Where("part_id = ?", part.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(movements))
	}
	if movements[0].MovementType != entity.MovementReserve || movements[0].Quantity != -3 {
		t.Fatalf("unexpected movement: %+v", movements[0])
	}
}

func TestReserveInsufficientStock(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	part := testutil.SeedPart(t, db, "SCR-002", 5, 2)

	if _, err := svc.Part.Reserve(ctx, part.ID, 6, "RO", "", "", "user-1"); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// stock must be untouched
	got, err := svc.Part.Get(ctx, part.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.QuantityInStock != 5 {
		t.Fatalf("expected stock 5 after failed reserve, got %d", got.QuantityInStock)
	}
}

func TestReserveInactivePart(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	part := testutil.SeedPart(t, db, "SCR-003", 5, 2)
	if err := db.Model(&entity.Part{}).Where("id = ?", part.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate part: %v", err)
	}

	if _, err := svc.Part.Reserve(ctx, part.ID, 1, "RO", "", "", "user-1"); !errors.Is(err, ErrPartInactive) {
		t.Fatalf("expected ErrPartInactive, got %v", err)
	}
}

func TestReserveUnknownPart(t *testing.T) {
	svc, _ := setupServices(t)

	if _, err := svc.Part.Reserve(context.Background(), "no-such-part", 1, "RO", "", "", "user-1"); !errors.Is(err, ErrPartNotFound) {
		t.Fatalf("expected ErrPartNotFound, got %v", err)
	}
}

func TestRestoreIncrementsStock(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	part := testutil.SeedPart(t, db, "SCR-004", 2, 1)

	updated, err := svc.Part.Restore(ctx, part.ID, 3, "RO", "order-9", "RO-2026-000009", "user-1")
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if updated.QuantityInStock != 5 {
		t.Fatalf("expected stock 5, got %d", updated.QuantityInStock)
	}
}

func TestAdjustStock(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	part := testutil.SeedPart(t, db, "SCR-005", 10, 2)

	got, err := svc.Part.AdjustStock(ctx, part.ID, AdjustStockRequest{Quantity: 4, Type: "add", Notes: "restock"}, "user-1")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if got.QuantityInStock != 14 {
		t.Fatalf("expected 14 after add, got %d", got.QuantityInStock)
	}

	// subtract floors at zero
	got, err = svc.Part.AdjustStock(ctx, part.ID, AdjustStockRequest{Quantity: 20, Type: "subtract"}, "user-1")
	if err != nil {
		t.Fatalf("subtract failed: %v", err)
	}
	if got.QuantityInStock != 0 {
		t.Fatalf("expected 0 after floored subtract, got %d", got.QuantityInStock)
	}

	got, err = svc.Part.AdjustStock(ctx, part.ID, AdjustStockRequest{Quantity: 7, Type: "set"}, "user-1")
	if err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if got.QuantityInStock != 7 {
		t.Fatalf("expected 7 after set, got %d", got.QuantityInStock)
	}

	// every adjustment leaves a movement with the applied delta
	var movements []entity.StockMovement
	if err := db.Where("part_id = ? AND movement_type = ?", part.ID, entity.MovementAdjust).
		Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 3 {
		t.Fatalf("expected 3 adjust movements, got %d", len(movements))
	}
	deltas := map[int]bool{}
	for _, mv := range movements {
		deltas[mv.Quantity] = true
	}
	for _, want := range []int{4, -14, 7} {
		if !deltas[want] {
			t.Fatalf("missing adjust movement with delta %d", want)
		}
	}
}

func TestPartStatusTransitions(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	part := testutil.SeedPart(t, db, "SCR-006", 0, 2)

	// in_stock → ordered (reorder)
	got, err := svc.Part.UpdateStatus(ctx, part.ID, UpdatePartStatusRequest{Status: entity.PartStatusOrdered})
	if err != nil {
		t.Fatalf("in_stock→ordered failed: %v", err)
	}
	if got.OrderDate == nil {
		t.Fatal("expected order date to be stamped")
	}

	// ordered → in_transit keeps order date
	orderDate := *got.OrderDate
	got, err = svc.Part.UpdateStatus(ctx, part.ID, UpdatePartStatusRequest{Status: entity.PartStatusInTransit})
	if err != nil {
		t.Fatalf("ordered→in_transit failed: %v", err)
	}
	if got.OrderDate == nil || !got.OrderDate.Equal(orderDate) {
		t.Fatal("expected order date to be preserved in transit")
	}

	// in_transit → ordered is illegal
	if _, err := svc.Part.UpdateStatus(ctx, part.ID, UpdatePartStatusRequest{Status: entity.PartStatusOrdered}); !errors.Is(err, ErrIllegalStatusTransition) {
		t.Fatalf("expected ErrIllegalStatusTransition, got %v", err)
	}

	// in_transit → in_stock stamps received date
	got, err = svc.Part.UpdateStatus(ctx, part.ID, UpdatePartStatusRequest{Status: entity.PartStatusInStock})
	if err != nil {
		t.Fatalf("in_transit→in_stock failed: %v", err)
	}
	if got.ReceivedDate == nil {
		t.Fatal("expected received date to be stamped")
	}
}

func TestUpdatePartDoesNotTouchStock(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	part := testutil.SeedPart(t, db, "SCR-007", 9, 2)

	name := "Replacement Screen"
	got, err := svc.Part.Update(ctx, part.ID, UpdatePartRequest{Name: &name})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != name {
		t.Fatalf("expected name updated, got %q", got.Name)
	}
	if got.QuantityInStock != 9 {
		t.Fatalf("edit must not change stock, got %d", got.QuantityInStock)
	}
}

func TestLowStockAlerts(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	low := testutil.SeedPart(t, db, "SCR-008", 2, 5)
	testutil.SeedPart(t, db, "SCR-009", 50, 5)
	inactive := testutil.SeedPart(t, db, "SCR-010", 0, 5)
	if err := db.Model(&entity.Part{}).Where("id = ?", inactive.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate part: %v", err)
	}

	alerts, err := svc.Part.Alerts(ctx)
	if err != nil {
		t.Fatalf("Alerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].ID != low.ID {
		t.Fatalf("expected alert for %s, got %s", low.ID, alerts[0].ID)
	}
	if !alerts[0].IsLowStock() {
		t.Fatal("alerted part must report low stock")
	}
}

func TestListPartsByStockStatus(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	testutil.SeedPart(t, db, "SCR-011", 0, 2)
	testutil.SeedPart(t, db, "SCR-012", 1, 2)
	testutil.SeedPart(t, db, "SCR-013", 30, 2)

	items, total, err := svc.Part.List(ctx, repository.PartListParams{StockStatus: "out_of_stock", Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].PartNumber != "SCR-011" {
		t.Fatalf("unexpected out_of_stock result: total=%d items=%d", total, len(items))
	}

	_, total, err = svc.Part.List(ctx, repository.PartListParams{StockStatus: "low_stock", Page: 1, Size: 20})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 low_stock parts, got %d", total)
	}
}
