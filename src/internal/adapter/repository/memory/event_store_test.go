package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api-sage/multicurrency-account/src/internal/domain"
)

func TestEventStoreAppendAssignsIDsAndKeepsOrder(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	err := store.Append(ctx, "acc-1", []domain.EventRecord{
		{Type: domain.EventAccountRegistered, Payload: []byte(`{"n":1}`), Checksum: "a"},
		{Type: domain.EventCurrencyBought, Payload: []byte(`{"n":2}`), Checksum: "b"},
	})
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "acc-2", []domain.EventRecord{{Type: domain.EventAccountRegistered, Payload: []byte(`{}`)}}))

	records, err := store.ReadAll(ctx, "acc-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, "acc-1", records[1].AccountID)
	assert.Equal(t, `{"n":2}`, string(records[1].Payload))
	assert.False(t, records[0].RecordedAt.IsZero())

	records[0].Payload[0] = 'X'
	again, err := store.ReadAll(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, `{"n":1}`, string(again[0].Payload))

	missing, err := store.ReadAll(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestEventStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, NewEventStore().Append(ctx, "acc-1", []domain.EventRecord{{}}), context.Canceled)
}

func TestRateTable(t *testing.T) {
	table := DefaultRateTable()

	ask, err := table.BuyingRate(context.Background(), domain.USD)
	require.NoError(t, err)
	assert.Equal(t, "4.0006", ask.String())

	bid, err := table.SellingRate(context.Background(), domain.USD)
	require.NoError(t, err)
	assert.Equal(t, "3.9214", bid.String())

	_, err = table.BuyingRate(context.Background(), domain.PLN)
	assert.ErrorIs(t, err, domain.ErrRateUnavailable)
}
