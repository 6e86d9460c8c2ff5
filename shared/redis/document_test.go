package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newTestClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestDocumentRoundTrip(t *testing.T) {
	_, client := newTestClient(t)
	doc := NewDocument[profile](client, 0)
	ctx := context.Background()

	got, ok, err := doc.Get(ctx, "bank:admin")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, doc.Set(ctx, "bank:admin", &profile{Name: "Admin", Email: "admin@eaglebank.test"}))

	got, ok, err = doc.Get(ctx, "bank:admin")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Admin", got.Name)

	require.NoError(t, doc.Delete(ctx, "bank:admin"))
	_, ok, err = doc.Get(ctx, "bank:admin")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentTTL(t *testing.T) {
	mr, client := newTestClient(t)
	doc := NewDocument[profile](client, time.Minute)
	ctx := context.Background()

	require.NoError(t, doc.Set(ctx, "session", &profile{Name: "x"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := doc.Get(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDocumentDecodeError(t *testing.T) {
	mr, client := newTestClient(t)
	require.NoError(t, mr.Set("broken", "{not json"))

	_, ok, err := NewDocument[profile](client, 0).Get(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, ok)
}
