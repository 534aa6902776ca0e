package idempotency_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/selvamkrish/table-reservations-and-content/internal/adapters/redis"
	"github.com/selvamkrish/table-reservations-and-content/internal/idempotency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(client), time.Hour)
	ctx := context.Background()

	got, err := idemp.Get(ctx, "fresh-key-0123456789")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := idempotency.Response{Status: http.StatusCreated, Result: []byte(`{"reservation_id":"abc"}`)}
	require.NoError(t, idemp.Set(ctx, "fresh-key-0123456789", want))

	got, err = idemp.Get(ctx, "fresh-key-0123456789")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Result, got.Result)
}
