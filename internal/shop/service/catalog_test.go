package service

import (
	"context"
	"testing"

	"github.com/jalalon11/vsmartnewsms/internal/shop/entity"
	"github.com/jalalon11/vsmartnewsms/internal/shop/testutil"
)

func TestCreateCustomerWithDevice(t *testing.T) {
	svc, _ := setupServices(t)
	ctx := context.Background()

	customer, err := svc.Catalog.CreateCustomer(ctx, CreateCustomerRequest{
		FirstName: "Maria",
		LastName:  "Santos",
		Phone:     "0918-111-2222",
	})
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}

	device, err := svc.Catalog.CreateDevice(ctx, CreateDeviceRequest{
		CustomerID: customer.ID,
		Brand:      "Samsung",
		Model:      "Galaxy S22",
	})
	if err != nil {
		t.Fatalf("CreateDevice failed: %v", err)
	}

	devices, err := svc.Catalog.ListCustomerDevices(ctx, customer.ID)
	if err != nil {
		t.Fatalf("ListCustomerDevices failed: %v", err)
	}
	if len(devices) != 1 || devices[0].ID != device.ID {
		t.Fatalf("expected the registered device, got %+v", devices)
	}
}

func TestCreateDeviceUnknownCustomer(t *testing.T) {
	svc, _ := setupServices(t)

	_, err := svc.Catalog.CreateDevice(context.Background(), CreateDeviceRequest{
		CustomerID: "no-such-customer",
		Brand:      "Samsung",
		Model:      "Galaxy S22",
	})
	if err == nil {
		t.Fatal("expected error for unknown customer")
	}
}

func TestCreateTechnicianRequiresUser(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	if _, err := svc.Catalog.CreateTechnician(ctx, CreateTechnicianRequest{
		UserID:     "no-such-user",
		EmployeeID: "EMP-404",
	}); err == nil {
		t.Fatal("expected error for unknown user")
	}

	user := testutil.SeedUser(t, db, "New Tech")
	tech, err := svc.Catalog.CreateTechnician(ctx, CreateTechnicianRequest{
		UserID:     user.ID,
		EmployeeID: "EMP-001",
		HourlyRate: 15.5,
	})
	if err != nil {
		t.Fatalf("CreateTechnician failed: %v", err)
	}
	if !tech.IsActive {
		t.Fatal("new technician must start active")
	}
}

func TestResolveAssigneeName(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	if name := svc.Catalog.ResolveAssigneeName(ctx, entity.Assignee{}); name != "Unassigned" {
		t.Fatalf("expected Unassigned for empty assignee, got %q", name)
	}

	tech := testutil.SeedTechnician(t, db, "Alex Reyes")
	name := svc.Catalog.ResolveAssigneeName(ctx, entity.Assignee{
		Type: entity.AssigneeTechnician,
		ID:   tech.ID,
	})
	if name != "Alex Reyes" {
		t.Fatalf("expected technician name, got %q", name)
	}

	staff := testutil.SeedUser(t, db, "Front Desk")
	name = svc.Catalog.ResolveAssigneeName(ctx, entity.Assignee{
		Type: entity.AssigneeStaff,
		ID:   staff.ID,
	})
	if name != "Front Desk" {
		t.Fatalf("expected staff name, got %q", name)
	}

	name = svc.Catalog.ResolveAssigneeName(ctx, entity.Assignee{
		Type: entity.AssigneeTechnician,
		ID:   "no-such-tech",
	})
	if name != "Unassigned" {
		t.Fatalf("expected Unassigned for dangling assignee, got %q", name)
	}
}

func TestListServicesActiveOnly(t *testing.T) {
	svc, db := setupServices(t)
	ctx := context.Background()

	active := testutil.SeedService(t, db, "Diagnostics", 40, 20)
	retired := testutil.SeedService(t, db, "CRT Repair", 90, 120)
	if err := db.Model(&entity.Service{}).Where("id = ?", retired.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate service: %v", err)
	}

	items, err := svc.Catalog.ListServices(ctx, true)
	if err != nil {
		t.Fatalf("ListServices failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != active.ID {
		t.Fatalf("expected only the active service, got %+v", items)
	}
}
