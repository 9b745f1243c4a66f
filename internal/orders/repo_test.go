package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licimar/licimar-backend/pkg/db/models"
	"github.com/licimar/licimar-backend/pkg/enums"
	"github.com/licimar/licimar-backend/pkg/pagination"
)

func TestRepositoryListFilters(t *testing.T) {
	client := openTestClient(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	joao := seedParty(t, client, enums.PartyStatusActive)
	ana := &models.Party{Name: "Ana", Status: enums.PartyStatusActive}
	require.NoError(t, client.DB().Create(ana).Error)

	day := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	orders := []*models.Order{
		{PartyID: joao.ID, OccurredAt: day, Status: enums.OrderStatusFinalized, Total: dec("50.00")},
		{PartyID: joao.ID, OccurredAt: day.AddDate(0, 0, 1), Status: enums.OrderStatusCheckedOut},
		{PartyID: ana.ID, OccurredAt: day.AddDate(0, 0, 2), Status: enums.OrderStatusFinalized, Total: dec("20.00")},
	}
	for _, o := range orders {
		_, err := repo.Create(ctx, o)
		require.NoError(t, err)
	}

	params := pagination.Params{Page: 1, PerPage: 10}

	items, total, err := repo.List(ctx, ListFilter{PartyID: &joao.ID}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	items, total, err = repo.List(ctx, ListFilter{Status: enums.OrderStatusFinalized}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, item := range items {
		assert.Equal(t, enums.OrderStatusFinalized, item.Status)
	}

	from := day.AddDate(0, 0, 1)
	to := day.AddDate(0, 0, 1)
	items, total, err = repo.List(ctx, ListFilter{From: &from, To: &to}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, enums.OrderStatusCheckedOut, items[0].Status)
}

func TestRepositoryListOrdersNewestFirst(t *testing.T) {
	client := openTestClient(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	party := seedParty(t, client, enums.PartyStatusActive)
	day := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, &models.Order{
			PartyID:    party.ID,
			OccurredAt: day.AddDate(0, 0, i),
			Status:     enums.OrderStatusCheckedOut,
		})
		require.NoError(t, err)
	}

	items, _, err := repo.List(ctx, ListFilter{}, pagination.Params{Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].OccurredAt.After(items[1].OccurredAt))
	assert.True(t, items[1].OccurredAt.After(items[2].OccurredAt))
}

func TestRepositoryCreatePersistsItems(t *testing.T) {
	client := openTestClient(t)
	repo := NewRepository(client.DB())
	ctx := context.Background()

	party := seedParty(t, client, enums.PartyStatusActive)
	product := seedProduct(t, client, "Cerveja", "3.50", "100", enums.UnitKindDiscrete, false)

	order := &models.Order{
		PartyID:    party.ID,
		OccurredAt: time.Now().UTC(),
		Status:     enums.OrderStatusCheckedOut,
		Items: []models.OrderItem{
			{ProductID: product.ID, QuantityOut: dec("10"), UnitPrice: dec("3.50")},
		},
	}
	created, err := repo.Create(ctx, order)
	require.NoError(t, err)

	loaded, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, product.ID, loaded.Items[0].ProductID)
	assert.True(t, loaded.Items[0].QuantityOut.Equal(dec("10")))
}
