package users

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/licimar/licimar-backend/pkg/config"
	"github.com/licimar/licimar-backend/pkg/db"
	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/deletion"
	"github.com/licimar/licimar-backend/pkg/enums"
	pkgerrors "github.com/licimar/licimar-backend/pkg/errors"
	"github.com/licimar/licimar-backend/pkg/security"
)

// testPasswordCfg keeps Argon2id cheap so the suite stays fast.
var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    8192,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
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

	if err := client.DB().AutoMigrate(&models.User{}, &models.AuditLog{}); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	svc, err := NewService(NewRepository(client.DB()), client, testPasswordCfg)
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

func createUser(t *testing.T, svc Service, username string, role enums.UserRole) *UserDTO {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: username,
		Email:    username + "@licimar.com.br",
		Password: "correct-horse",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return user
}

func TestCreateUserHashesPassword(t *testing.T) {
	svc, client := newTestService(t)

	user := createUser(t, svc, "carlos", enums.UserRoleOperator)

	var stored models.User
	if err := client.DB().First(&stored, "id = ?", user.ID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "correct-horse" {
		t.Fatal("password stored in plaintext")
	}
	ok, err := security.VerifyPassword("correct-horse", stored.PasswordHash)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatal("expected stored hash to verify")
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateUserInput
	}{
		{"blankUsername", CreateUserInput{Username: " ", Email: "a@b.com", Password: "longenough", Role: enums.UserRoleOperator}},
		{"badEmail", CreateUserInput{Username: "ana", Email: "not-an-email", Password: "longenough", Role: enums.UserRoleOperator}},
		{"shortPassword", CreateUserInput{Username: "ana", Email: "ana@b.com", Password: "short", Role: enums.UserRoleOperator}},
		{"badRole", CreateUserInput{Username: "ana", Email: "ana@b.com", Password: "longenough", Role: enums.UserRole("root")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, tc.input)
			expectCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestCreateUserDuplicateUsernameConflicts(t *testing.T) {
	svc, _ := newTestService(t)

	createUser(t, svc, "dup", enums.UserRoleOperator)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{
		Username: "dup",
		Email:    "other@licimar.com.br",
		Password: "longenough",
		Role:     enums.UserRoleOperator,
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestUpdateUserRoleRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user := createUser(t, svc, "operadora", enums.UserRoleOperator)

	admin := enums.UserRoleAdmin
	_, err := svc.UpdateUser(ctx, enums.UserRoleOperator, user.ID, UpdateUserInput{Role: &admin})
	expectCode(t, err, pkgerrors.CodeForbidden)

	updated, err := svc.UpdateUser(ctx, enums.UserRoleAdmin, user.ID, UpdateUserInput{Role: &admin})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != enums.UserRoleAdmin {
		t.Fatalf("expected admin role, got %s", updated.Role)
	}
}

func TestDeleteUserWithAuditHistoryDeactivates(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	user := createUser(t, svc, "auditado", enums.UserRoleOperator)

	entry := models.AuditLog{UserID: &user.ID, Action: "order.checkout"}
	if err := client.DB().Create(&entry).Error; err != nil {
		t.Fatalf("seed audit entry: %v", err)
	}

	result, err := svc.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if result.Decision != deletion.DecisionDeactivate {
		t.Fatalf("expected deactivate, got %s", result.Decision)
	}

	got, err := svc.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.IsActive {
		t.Fatal("expected user inactive after delete")
	}
}

func TestDeleteUserWithoutHistoryHardDeletes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user := createUser(t, svc, "novato", enums.UserRoleOperator)

	result, err := svc.DeleteUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if result.Decision != deletion.DecisionHardDelete {
		t.Fatalf("expected hard delete, got %s", result.Decision)
	}
	if _, err := svc.GetUser(ctx, user.ID); err == nil {
		t.Fatal("expected user to be gone")
	}
}
