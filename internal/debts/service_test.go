package debts

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/licimar/licimar-backend/pkg/config"
	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

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

	if err := client.DB().AutoMigrate(
		&models.Party{},
		&models.Debt{},
		&models.DebtPayment{},
	); err != nil {
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

func seedParty(t *testing.T, client *db.Client) *models.Party {
	t.Helper()
	party := &models.Party{Name: "Dona Flor", Status: enums.PartyStatusActive}
	if err := client.DB().Create(party).Error; err != nil {
		t.Fatalf("seed party: %v", err)
	}
	return party
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected error code %s, got %v", code, err)
	}
}

func registerDebtAt(t *testing.T, svc Service, party *models.Party, amount string, at time.Time) *DebtDTO {
	t.Helper()
	debt, err := svc.RegisterDebt(context.Background(), RegisterDebtInput{
		PartyID:      party.ID,
		Amount:       dec(amount),
		RegisteredAt: &at,
	})
	if err != nil {
		t.Fatalf("RegisterDebt: %v", err)
	}
	return debt
}

func TestRegisterDebtRejectsNonPositiveAmount(t *testing.T) {
	svc, client := newTestService(t)
	party := seedParty(t, client)

	_, err := svc.RegisterDebt(context.Background(), RegisterDebtInput{
		PartyID: party.ID,
		Amount:  dec("0"),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestRegisterPaymentAllocatesOldestFirst(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	party := seedParty(t, client)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := registerDebtAt(t, svc, party, "100.00", base)
	newest := registerDebtAt(t, svc, party, "50.00", base.Add(48*time.Hour))

	result, err := svc.RegisterPayment(ctx, RegisterPaymentInput{
		PartyID: party.ID,
		Amount:  dec("120.00"),
	})
	if err != nil {
		t.Fatalf("RegisterPayment: %v", err)
	}

	if !result.AppliedAmount.Equal(dec("120.00")) {
		t.Fatalf("expected applied 120.00, got %s", result.AppliedAmount)
	}
	if !result.UnappliedAmount.IsZero() {
		t.Fatalf("expected no unapplied remainder, got %s", result.UnappliedAmount)
	}
	if len(result.Allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(result.Allocations))
	}

	first := result.Allocations[0]
	if first.DebtID != oldest.ID || !first.Applied.Equal(dec("100.00")) || first.Status != enums.DebtStatusSettled {
		t.Fatalf("unexpected first allocation: %+v", first)
	}
	second := result.Allocations[1]
	if second.DebtID != newest.ID || !second.Applied.Equal(dec("20.00")) {
		t.Fatalf("unexpected second allocation: %+v", second)
	}
	if !second.Outstanding.Equal(dec("30.00")) || second.Status != enums.DebtStatusPartiallyPaid {
		t.Fatalf("expected 30.00 outstanding partially_paid, got %+v", second)
	}

	reloaded, err := svc.GetDebt(ctx, newest.ID)
	if err != nil {
		t.Fatalf("GetDebt: %v", err)
	}
	if reloaded.Status != enums.DebtStatusPartiallyPaid || !reloaded.Outstanding.Equal(dec("30.00")) {
		t.Fatalf("expected persisted partially_paid with 30.00 outstanding, got %+v", reloaded)
	}
}

func TestRegisterPaymentOverpaymentReportsUnapplied(t *testing.T) {
	svc, client := newTestService(t)
	party := seedParty(t, client)
	registerDebtAt(t, svc, party, "40.00", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	result, err := svc.RegisterPayment(context.Background(), RegisterPaymentInput{
		PartyID: party.ID,
		Amount:  dec("100.00"),
	})
	if err != nil {
		t.Fatalf("RegisterPayment: %v", err)
	}
	if !result.AppliedAmount.Equal(dec("40.00")) {
		t.Fatalf("expected applied 40.00, got %s", result.AppliedAmount)
	}
	if !result.UnappliedAmount.Equal(dec("60.00")) {
		t.Fatalf("expected unapplied 60.00, got %s", result.UnappliedAmount)
	}
}

func TestRegisterPaymentNoOpenDebts(t *testing.T) {
	svc, client := newTestService(t)
	party := seedParty(t, client)

	_, err := svc.RegisterPayment(context.Background(), RegisterPaymentInput{
		PartyID: party.ID,
		Amount:  dec("10.00"),
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestRegisterPaymentResumesPartiallyPaidDebt(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	party := seedParty(t, client)
	debt := registerDebtAt(t, svc, party, "80.00", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	if _, err := svc.RegisterPayment(ctx, RegisterPaymentInput{PartyID: party.ID, Amount: dec("30.00")}); err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if _, err := svc.RegisterPayment(ctx, RegisterPaymentInput{PartyID: party.ID, Amount: dec("50.00")}); err != nil {
		t.Fatalf("second payment: %v", err)
	}

	reloaded, err := svc.GetDebt(ctx, debt.ID)
	if err != nil {
		t.Fatalf("GetDebt: %v", err)
	}
	if reloaded.Status != enums.DebtStatusSettled {
		t.Fatalf("expected settled, got %s", reloaded.Status)
	}
	if !reloaded.Outstanding.IsZero() {
		t.Fatalf("expected zero outstanding, got %s", reloaded.Outstanding)
	}
	if len(reloaded.Payments) != 2 {
		t.Fatalf("expected 2 payments, got %d", len(reloaded.Payments))
	}
}

func TestDeleteDebtWithPaymentsRejected(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	party := seedParty(t, client)
	debt := registerDebtAt(t, svc, party, "80.00", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	if _, err := svc.RegisterPayment(ctx, RegisterPaymentInput{PartyID: party.ID, Amount: dec("10.00")}); err != nil {
		t.Fatalf("payment: %v", err)
	}

	_, err := svc.DeleteDebt(ctx, debt.ID)
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestDeleteDebtWithoutPayments(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	party := seedParty(t, client)
	debt := registerDebtAt(t, svc, party, "80.00", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

	result, err := svc.DeleteDebt(ctx, debt.ID)
	if err != nil {
		t.Fatalf("DeleteDebt: %v", err)
	}
	if result.Decision != "hard_delete" {
		t.Fatalf("expected hard_delete, got %s", result.Decision)
	}
	if _, err := svc.GetDebt(ctx, debt.ID); err == nil {
		t.Fatal("expected debt to be gone")
	}
}
