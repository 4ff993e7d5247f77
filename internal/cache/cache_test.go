package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestCache_GetJSON_Hit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	want := payload{Name: "Entrada General", Count: 2}
	raw, err := json.Marshal(want)
	require.NoError(t, err)
	mock.ExpectGet("catalog:ticket-types").SetVal(string(raw))

	var got payload
	hit, err := c.GetJSON(context.Background(), "catalog:ticket-types", &got)

	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_GetJSON_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGet("catalog:lineup").RedisNil()

	var got payload
	hit, err := c.GetJSON(context.Background(), "catalog:lineup", &got)

	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_SetJSON(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	value := payload{Name: "VIP", Count: 1}
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	mock.ExpectSet("catalog:ticket-types", raw, 5*time.Minute).SetVal("OK")

	err = c.SetJSON(context.Background(), "catalog:ticket-types", value, 5*time.Minute)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_TakeJSON_ConsumesKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	want := payload{Name: "checkout", Count: 3}
	raw, err := json.Marshal(want)
	require.NoError(t, err)
	mock.ExpectGetDel("checkout:jkf-checkout-abc").SetVal(string(raw))

	var got payload
	found, err := c.TakeJSON(context.Background(), "checkout:jkf-checkout-abc", &got)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_TakeJSON_AlreadyConsumed(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectGetDel("checkout:jkf-checkout-abc").RedisNil()

	var got payload
	found, err := c.TakeJSON(context.Background(), "checkout:jkf-checkout-abc", &got)

	require.NoError(t, err)
	assert.False(t, found, "a second delivery must not find the checkout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCache_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := New(db)

	mock.ExpectDel("catalog:ticket-types", "catalog:lineup").SetVal(2)

	err := c.Delete(context.Background(), "catalog:ticket-types", "catalog:lineup")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// No keys is a no-op, not an error.
	assert.NoError(t, c.Delete(context.Background()))
}
