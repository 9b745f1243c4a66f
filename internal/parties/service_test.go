package parties

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/pkg/config"
	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/deletion"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

const validCPF = "529.982.247-25"

func openTestClient(t *testing.T) *db.Client {
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
		&models.Order{},
		&models.Debt{},
		&models.DebtPayment{},
		&models.ConsignmentOrder{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return client
}

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := openTestClient(t)
	svc, err := NewService(NewRepository(client.DB()), client)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, client
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

func strPtr(s string) *string { return &s }

func TestCreatePartyNormalizesContactFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	party, err := svc.CreateParty(ctx, CreatePartyInput{
		Name:  "  Seu Zé  ",
		Email: strPtr(" ZE@Example.COM "),
		CPF:   strPtr(validCPF),
		Phone: strPtr("(21) 98888-7766"),
	})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	if party.Name != "Seu Zé" {
		t.Fatalf("expected trimmed name, got %q", party.Name)
	}
	if party.Email == nil || *party.Email != "ze@example.com" {
		t.Fatalf("expected lowercased email, got %v", party.Email)
	}
	if party.CPF == nil || *party.CPF != "52998224725" {
		t.Fatalf("expected digits-only cpf, got %v", party.CPF)
	}
	if party.Phone == nil || *party.Phone != "21988887766" {
		t.Fatalf("expected digits-only phone, got %v", party.Phone)
	}
	if party.Status != enums.PartyStatusActive {
		t.Fatalf("expected active status, got %s", party.Status)
	}
}

func TestCreatePartyRejectsInvalidCPF(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateParty(context.Background(), CreatePartyInput{
		Name: "Dona Maria",
		CPF:  strPtr("111.111.111-11"),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreatePartyRejectsBlankName(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateParty(context.Background(), CreatePartyInput{Name: "   "})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreatePartyDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateParty(ctx, CreatePartyInput{Name: "A", Email: strPtr("dup@example.com")}); err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	_, err := svc.CreateParty(ctx, CreatePartyInput{Name: "B", Email: strPtr("dup@example.com")})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestGetPartyIncludesOutstandingDebt(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	party, err := svc.CreateParty(ctx, CreatePartyInput{Name: "Devedor"})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	open := models.Debt{
		PartyID: party.ID,
		Amount:  decimal.RequireFromString("80.00"),
		Status:  enums.DebtStatusOpen,
	}
	if err := client.DB().Create(&open).Error; err != nil {
		t.Fatalf("seed debt: %v", err)
	}
	partial := models.Debt{
		PartyID: party.ID,
		Amount:  decimal.RequireFromString("50.00"),
		Status:  enums.DebtStatusPartiallyPaid,
	}
	if err := client.DB().Create(&partial).Error; err != nil {
		t.Fatalf("seed debt: %v", err)
	}
	payment := models.DebtPayment{
		DebtID: partial.ID,
		Amount: decimal.RequireFromString("20.00"),
	}
	if err := client.DB().Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	got, err := svc.GetParty(ctx, party.ID)
	if err != nil {
		t.Fatalf("GetParty: %v", err)
	}
	if got.OutstandingDebt == nil {
		t.Fatal("expected outstanding debt to be reported")
	}
	if !got.OutstandingDebt.Equal(decimal.RequireFromString("110.00")) {
		t.Fatalf("expected outstanding 110.00, got %s", got.OutstandingDebt)
	}
}

func TestUpdatePartyStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	party, err := svc.CreateParty(ctx, CreatePartyInput{Name: "Ativa"})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	inactive := enums.PartyStatusInactive
	updated, err := svc.UpdateParty(ctx, party.ID, UpdatePartyInput{Status: &inactive})
	if err != nil {
		t.Fatalf("UpdateParty: %v", err)
	}
	if updated.Status != enums.PartyStatusInactive {
		t.Fatalf("expected inactive, got %s", updated.Status)
	}
}

func TestUpdatePartyClearsEmailWithEmptyString(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	party, err := svc.CreateParty(ctx, CreatePartyInput{Name: "Com Email", Email: strPtr("x@example.com")})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	updated, err := svc.UpdateParty(ctx, party.ID, UpdatePartyInput{Email: strPtr("")})
	if err != nil {
		t.Fatalf("UpdateParty: %v", err)
	}
	if updated.Email != nil {
		t.Fatalf("expected email cleared, got %v", updated.Email)
	}
}

func TestDeletePartyWithoutHistoryHardDeletes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	party, err := svc.CreateParty(ctx, CreatePartyInput{Name: "Sem Histórico"})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}

	result, err := svc.DeleteParty(ctx, party.ID)
	if err != nil {
		t.Fatalf("DeleteParty: %v", err)
	}
	if result.Decision != deletion.DecisionHardDelete {
		t.Fatalf("expected hard delete, got %s", result.Decision)
	}
	if _, err := svc.GetParty(ctx, party.ID); err == nil {
		t.Fatal("expected party to be gone")
	}
}

func TestDeletePartyWithDebtsDeactivates(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	party, err := svc.CreateParty(ctx, CreatePartyInput{Name: "Com Dívida"})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	debt := models.Debt{
		PartyID: party.ID,
		Amount:  decimal.RequireFromString("10.00"),
		Status:  enums.DebtStatusOpen,
	}
	if err := client.DB().Create(&debt).Error; err != nil {
		t.Fatalf("seed debt: %v", err)
	}

	result, err := svc.DeleteParty(ctx, party.ID)
	if err != nil {
		t.Fatalf("DeleteParty: %v", err)
	}
	if result.Decision != deletion.DecisionDeactivate {
		t.Fatalf("expected deactivate, got %s", result.Decision)
	}

	got, err := svc.GetParty(ctx, party.ID)
	if err != nil {
		t.Fatalf("GetParty: %v", err)
	}
	if got.Status != enums.PartyStatusInactive {
		t.Fatalf("expected inactive after delete, got %s", got.Status)
	}
}

func TestListPartiesFiltersByStatusAndSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Barraca do João", "Barraca da Ana", "Quiosque Azul"} {
		if _, err := svc.CreateParty(ctx, CreatePartyInput{Name: name}); err != nil {
			t.Fatalf("CreateParty(%s): %v", name, err)
		}
	}

	page, err := svc.ListParties(ctx, ListFilter{Search: "Barraca"}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListParties: %v", err)
	}
	if page.Pagination.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", page.Pagination.Total)
	}

	page, err = svc.ListParties(ctx, ListFilter{Status: enums.PartyStatusInactive}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListParties: %v", err)
	}
	if page.Pagination.Total != 0 {
		t.Fatalf("expected no inactive parties, got %d", page.Pagination.Total)
	}
}
