package catalog

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

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
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
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.ConsignmentItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

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

func TestCreateProductDefaultsToDiscreteUnit(t *testing.T) {
	svc, _ := newTestService(t)

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Cerveja Lata",
		Price: dec("3.50"),
		Stock: dec("100"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if product.UnitKind != enums.UnitKindDiscrete {
		t.Fatalf("expected discrete unit, got %s", product.UnitKind)
	}
	if !product.IsActive {
		t.Fatal("expected product active on creation")
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"blankName", CreateProductInput{Name: "  ", Price: dec("1.00")}},
		{"zeroPrice", CreateProductInput{Name: "Gelo", Price: dec("0")}},
		{"negativeStock", CreateProductInput{Name: "Gelo", Price: dec("1.00"), Stock: dec("-1")}},
		{"badUnitKind", CreateProductInput{Name: "Gelo", Price: dec("1.00"), UnitKind: enums.UnitKind("litros")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.input)
			expectCode(t, err, pkgerrors.CodeValidation)
		})
	}
}

func TestCreateProductRejectsMissingCategory(t *testing.T) {
	svc, _ := newTestService(t)

	category, err := svc.CreateCategory(context.Background(), CreateCategoryInput{Name: "Bebidas"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.DeleteCategory(context.Background(), category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Refrigerante",
		Price:      dec("5.00"),
		CategoryID: &category.ID,
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestLowStockFlagAndFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	low, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:     "Carvão",
		Price:    dec("12.00"),
		Stock:    dec("2"),
		MinStock: dec("5"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if !low.LowStock {
		t.Fatal("expected low stock flag")
	}

	if _, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:     "Gelo",
		Price:    dec("8.00"),
		Stock:    dec("50"),
		MinStock: dec("5"),
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	page, err := svc.ListProducts(ctx, ProductFilter{LowStock: true}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if page.Pagination.Total != 1 {
		t.Fatalf("expected 1 low stock product, got %d", page.Pagination.Total)
	}
}

func TestUpdateProductPriceAndDeactivate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:  "Espetinho",
		Price: dec("7.00"),
		Stock: dec("30"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	newPrice := dec("8.50")
	active := false
	updated, err := svc.UpdateProduct(ctx, product.ID, UpdateProductInput{
		Price:    &newPrice,
		IsActive: &active,
	})
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Fatalf("expected price 8.50, got %s", updated.Price)
	}
	if updated.IsActive {
		t.Fatal("expected product inactive")
	}

	page, err := svc.ListProducts(ctx, ProductFilter{ActiveOnly: true}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if page.Pagination.Total != 0 {
		t.Fatalf("expected no active products, got %d", page.Pagination.Total)
	}
}

func TestDeleteProductWithOrderHistoryDeactivates(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:  "Cerveja Lata",
		Price: dec("3.50"),
		Stock: dec("100"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	item := models.OrderItem{
		ProductID:    product.ID,
		UnitPrice:    product.Price,
		QuantityOut:  dec("10"),
		QuantityBack: dec("0"),
	}
	if err := client.DB().Create(&item).Error; err != nil {
		t.Fatalf("seed order item: %v", err)
	}

	result, err := svc.DeleteProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if result.Decision != deletion.DecisionDeactivate {
		t.Fatalf("expected deactivate, got %s", result.Decision)
	}

	got, err := svc.GetProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	if got.IsActive {
		t.Fatal("expected product inactive after delete")
	}
}

func TestDeleteProductWithoutHistoryHardDeletes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:  "Descartável",
		Price: dec("1.00"),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	result, err := svc.DeleteProduct(ctx, product.ID)
	if err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if result.Decision != deletion.DecisionHardDelete {
		t.Fatalf("expected hard delete, got %s", result.Decision)
	}
	if _, err := svc.GetProduct(ctx, product.ID); err == nil {
		t.Fatal("expected product to be gone")
	}
}

func TestCategoryCRUDAndDuplicateName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Bebidas"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	_, err = svc.CreateCategory(ctx, CreateCategoryInput{Name: "Bebidas"})
	expectCode(t, err, pkgerrors.CodeConflict)

	newName := "Bebidas Geladas"
	updated, err := svc.UpdateCategory(ctx, category.ID, UpdateCategoryInput{Name: &newName})
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != newName {
		t.Fatalf("expected renamed category, got %s", updated.Name)
	}
}

func TestDeleteCategoryWithProductsDeactivates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CreateCategoryInput{Name: "Petiscos"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := svc.CreateProduct(ctx, CreateProductInput{
		Name:       "Amendoim",
		Price:      dec("4.00"),
		CategoryID: &category.ID,
	}); err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	result, err := svc.DeleteCategory(ctx, category.ID)
	if err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if result.Decision != deletion.DecisionDeactivate {
		t.Fatalf("expected deactivate, got %s", result.Decision)
	}
}
