package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishAppendsToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	p := NewPublisher(client, 0)
	err := p.Publish(context.Background(), AccountEventsStream, AccountCreated, AccountCreatedEvent{
		AccountID:     "account_1_1",
		AccountNumber: "4001-0001-0002",
		FullName:      "Valentina Garcia",
		AccountType:   "savings",
	})
	require.NoError(t, err)

	msgs, err := client.XRange(context.Background(), AccountEventsStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var event Event
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["event"].(string)), &event))
	assert.Equal(t, AccountCreated, event.Type)
	data := event.Data.(map[string]any)
	assert.Equal(t, "4001-0001-0002", data["accountNumber"])
}

func TestPublishFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	err := NewPublisher(client, 100).Publish(context.Background(), AccountEventsStream, AccountDeleted, AccountDeletedEvent{AccountID: "a"})
	assert.Error(t, err)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), AccountEventsStream, AccountUpdated, nil))
}
