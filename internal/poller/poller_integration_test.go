package poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_bakery/internal/cache"
	"github.com/fjod/go_bakery/internal/checkout"
	"github.com/fjod/go_bakery/internal/domain"
	"github.com/fjod/go_bakery/internal/publisher"
	"github.com/fjod/go_bakery/internal/repository"
	"github.com/fjod/go_bakery/internal/service"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupKafka(t *testing.T) string {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	return brokers[0]
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func setupSnapshots(t *testing.T) (*service.SnapshotService, repository.SnapshotRepository) {
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)
	db, err := repository.OpenCartDatabase(ctx, uri, "testdb")
	require.NoError(t, err)
	repo := repository.NewMongoRepository(db)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return service.NewSnapshotService(repo, cache.NewRedisCache(client), service.DefaultBreakerConfig(), nil), repo
}

func TestPoller_CleansStaleCartsAndKeepsNewOnes(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := setupKafka(t)
	createTopic(t, broker, publisher.OrderSubmittedTopic)
	snapshots, repo := setupSnapshots(t)

	sink := publisher.NewKafkaSink(nil, broker)
	defer sink.Close()
	registry := checkout.NewRegistry(snapshots, checkout.NewValidator(nil), sink, nil)
	defer registry.Close()

	// s-1 submits and then starts a new cart before the event is consumed
	session := registry.Get(ctx, "s-1")
	require.NoError(t, session.Cart.AddItem(ctx, "krempita", decimal.NewFromInt(180), "Krempita", "", 2))
	session.Draft.SetCustomerName("Ana")
	session.Draft.SetPhone("0641234567")
	session.Draft.SetEmail("ana@example.com")
	_, err := session.Submit(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Cart.AddItem(ctx, "baklava", decimal.NewFromInt(150), "Baklava", "", 2))

	// s-2 still holds the cart it ordered from because the post-submit save never landed
	submittedAt := time.Now().UTC()
	require.NoError(t, repo.UpsertSnapshot(ctx, domain.CartSnapshot{
		SessionID: "s-2",
		Entries:   []domain.CartEntry{{ProductID: "krempita", UnitPrice: decimal.NewFromInt(180), Quantity: 1}},
		SavedAt:   submittedAt.Add(-time.Hour),
	}))
	require.NoError(t, sink.Submit(ctx, domain.OrderPayload{
		ID:            uuid.New(),
		SessionID:     "s-2",
		PaymentMethod: domain.InStoreCash,
		Currency:      domain.Currency,
		SubmittedAt:   submittedAt,
	}))

	p := NewPoller(snapshots, nil, "storefront-test", broker)
	defer p.Close()
	go p.Run(ctx)

	// events share a partition, so s-1 has been handled once s-2 is gone
	require.Eventually(t, func() bool {
		_, err := repo.GetSnapshot(ctx, "s-2")
		return errors.Is(err, repository.ErrCartNotFound)
	}, 30*time.Second, 500*time.Millisecond)

	registry.Forget("s-1")
	reloaded := registry.Get(ctx, "s-1")
	entries := reloaded.Cart.Cart().Entries
	require.Len(t, entries, 1)
	assert.Equal(t, "baklava", entries[0].ProductID)
	assert.Equal(t, 2, entries[0].Quantity)
}
