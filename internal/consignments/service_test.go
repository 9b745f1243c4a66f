package consignments

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/pkg/config"
	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type testPartyLoader struct {
	client *db.Client
}

func (l *testPartyLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var party models.Party
	if err := l.client.DB().WithContext(ctx).First(&party, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

type testProductLoader struct {
	client *db.Client
}

func (l *testProductLoader) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := l.client.DB().WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := db.New(context.Background(), config.DBConfig{
		Driver:       config.DBDriverSQLite,
		DSN:          dsn,
		MaxOpenConns: 1,
	}, nil)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	err = client.DB().AutoMigrate(
		&models.Party{},
		&models.Category{},
		&models.Product{},
		&models.ConsignmentOrder{},
		&models.ConsignmentItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	svc, err := NewService(NewRepository(client.DB()), client, &testPartyLoader{client: client}, &testProductLoader{client: client})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, client
}

func paginationParams() pagination.Params {
	return pagination.Params{Page: 1, PerPage: 20}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func seedParty(t *testing.T, client *db.Client, status enums.PartyStatus) *models.Party {
	t.Helper()
	party := &models.Party{Name: "Barraca da Praia", Status: status}
	if err := client.DB().Create(party).Error; err != nil {
		t.Fatalf("seed party: %v", err)
	}
	return party
}

func seedProduct(t *testing.T, client *db.Client, name string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     name,
		Price:    dec("5.00"),
		Stock:    dec("100"),
		UnitKind: enums.UnitKindDiscrete,
		IsActive: true,
	}
	if err := client.DB().Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestCreateConsignmentComputesTotals(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	party := seedParty(t, client, enums.PartyStatusActive)
	beer := seedProduct(t, client, "Cerveja")
	ice := seedProduct(t, client, "Gelo")

	created, err := svc.Create(ctx, CreateInput{
		PartyID:   party.ID,
		Operation: enums.ConsignmentOperationWithdrawal,
		Lines: []Line{
			{ProductID: beer.ID, Quantity: dec("24"), UnitPrice: dec("3.00")},
			{ProductID: ice.ID, Quantity: dec("2.5"), UnitPrice: dec("8.00")},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != enums.ConsignmentStatusOpen {
		t.Fatalf("expected open status, got %s", created.Status)
	}
	if !created.Total.Equal(dec("92.00")) {
		t.Fatalf("expected total 92.00, got %s", created.Total)
	}
	if len(created.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(created.Items))
	}
	if !created.Items[0].Subtotal.Equal(dec("72.00")) {
		t.Fatalf("expected subtotal 72.00, got %s", created.Items[0].Subtotal)
	}
	if created.PartyName != "Barraca da Praia" {
		t.Fatalf("expected party name on DTO, got %q", created.PartyName)
	}
}

func TestCreateConsignmentValidation(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	party := seedParty(t, client, enums.PartyStatusActive)
	beer := seedProduct(t, client, "Cerveja")

	t.Run("invalidOperation", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{
			PartyID:   party.ID,
			Operation: enums.ConsignmentOperation("loan"),
			Lines:     []Line{{ProductID: beer.ID, Quantity: dec("1"), UnitPrice: dec("1.00")}},
		})
		expectCode(t, err, pkgerrors.CodeValidation)
	})

	t.Run("noLines", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{
			PartyID:   party.ID,
			Operation: enums.ConsignmentOperationWithdrawal,
		})
		expectCode(t, err, pkgerrors.CodeValidation)
	})

	t.Run("zeroQuantity", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{
			PartyID:   party.ID,
			Operation: enums.ConsignmentOperationWithdrawal,
			Lines:     []Line{{ProductID: beer.ID, Quantity: dec("0"), UnitPrice: dec("1.00")}},
		})
		expectCode(t, err, pkgerrors.CodeValidation)
	})

	t.Run("unknownProduct", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateInput{
			PartyID:   party.ID,
			Operation: enums.ConsignmentOperationWithdrawal,
			Lines:     []Line{{ProductID: uuid.New(), Quantity: dec("1"), UnitPrice: dec("1.00")}},
		})
		expectCode(t, err, pkgerrors.CodeValidation)
	})
}

func TestCreateConsignmentInactivePartyRejected(t *testing.T) {
	svc, client := newTestService(t)

	party := seedParty(t, client, enums.PartyStatusInactive)
	beer := seedProduct(t, client, "Cerveja")

	_, err := svc.Create(context.Background(), CreateInput{
		PartyID:   party.ID,
		Operation: enums.ConsignmentOperationWithdrawal,
		Lines:     []Line{{ProductID: beer.ID, Quantity: dec("1"), UnitPrice: dec("1.00")}},
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCloseConsignment(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	party := seedParty(t, client, enums.PartyStatusActive)
	beer := seedProduct(t, client, "Cerveja")

	created, err := svc.Create(ctx, CreateInput{
		PartyID:   party.ID,
		Operation: enums.ConsignmentOperationSettlement,
		Lines:     []Line{{ProductID: beer.ID, Quantity: dec("10"), UnitPrice: dec("3.00")}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	closed, err := svc.Close(ctx, created.ID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != enums.ConsignmentStatusClosed {
		t.Fatalf("expected closed, got %s", closed.Status)
	}

	_, err = svc.Close(ctx, created.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.Cancel(ctx, created.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelConsignment(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	party := seedParty(t, client, enums.PartyStatusActive)
	beer := seedProduct(t, client, "Cerveja")

	created, err := svc.Create(ctx, CreateInput{
		PartyID:   party.ID,
		Operation: enums.ConsignmentOperationDevolution,
		Lines:     []Line{{ProductID: beer.ID, Quantity: dec("5"), UnitPrice: dec("3.00")}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	canceled, err := svc.Cancel(ctx, created.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if canceled.Status != enums.ConsignmentStatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
}

func TestListConsignmentsFilters(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	party := seedParty(t, client, enums.PartyStatusActive)
	other := &models.Party{Name: "Outro", Status: enums.PartyStatusActive}
	if err := client.DB().Create(other).Error; err != nil {
		t.Fatalf("seed party: %v", err)
	}
	beer := seedProduct(t, client, "Cerveja")

	for _, in := range []CreateInput{
		{PartyID: party.ID, Operation: enums.ConsignmentOperationWithdrawal, Lines: []Line{{ProductID: beer.ID, Quantity: dec("1"), UnitPrice: dec("1.00")}}},
		{PartyID: party.ID, Operation: enums.ConsignmentOperationDevolution, Lines: []Line{{ProductID: beer.ID, Quantity: dec("1"), UnitPrice: dec("1.00")}}},
		{PartyID: other.ID, Operation: enums.ConsignmentOperationWithdrawal, Lines: []Line{{ProductID: beer.ID, Quantity: dec("1"), UnitPrice: dec("1.00")}}},
	} {
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := svc.List(ctx, ListFilter{PartyID: &party.ID}, paginationParams())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.Total != 2 {
		t.Fatalf("expected 2 consignments for party, got %d", page.Pagination.Total)
	}

	page, err = svc.List(ctx, ListFilter{Operation: enums.ConsignmentOperationWithdrawal}, paginationParams())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.Total != 2 {
		t.Fatalf("expected 2 withdrawals, got %d", page.Pagination.Total)
	}
}
