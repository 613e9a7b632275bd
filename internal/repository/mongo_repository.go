package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_bakery/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// snapshotTTL is how long an untouched cart survives in the collection.
const snapshotTTL = 30 * 24 * time.Hour

// entryDocument keeps prices as decimal strings so no precision is lost.
type entryDocument struct {
	ProductID string `bson:"product_id"`
	Name      string `bson:"name,omitempty"`
	UnitPrice string `bson:"unit_price"`
	Quantity  int    `bson:"quantity"`
	ImageURL  string `bson:"image_url,omitempty"`
}

type snapshotDocument struct {
	SessionID string          `bson:"session_id"`
	Entries   []entryDocument `bson:"entries"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

func toDocument(s domain.CartSnapshot) snapshotDocument {
	doc := snapshotDocument{
		SessionID: s.SessionID,
		Entries:   make([]entryDocument, 0, len(s.Entries)),
		UpdatedAt: s.SavedAt,
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = time.Now()
	}
	for _, e := range s.Entries {
		doc.Entries = append(doc.Entries, entryDocument{
			ProductID: e.ProductID,
			Name:      e.Name,
			UnitPrice: e.UnitPrice.String(),
			Quantity:  e.Quantity,
			ImageURL:  e.ImageURL,
		})
	}
	return doc
}

func (d snapshotDocument) toSnapshot() (*domain.CartSnapshot, error) {
	s := &domain.CartSnapshot{
		SessionID: d.SessionID,
		Entries:   make([]domain.CartEntry, 0, len(d.Entries)),
		SavedAt:   d.UpdatedAt,
	}
	for _, e := range d.Entries {
		price, err := decimal.NewFromString(e.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price for %s: %w", e.ProductID, err)
		}
		s.Entries = append(s.Entries, domain.CartEntry{
			ProductID: e.ProductID,
			Name:      e.Name,
			UnitPrice: price,
			Quantity:  e.Quantity,
			ImageURL:  e.ImageURL,
		})
	}
	return s, nil
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) SnapshotRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetSnapshot(ctx context.Context, sessionID string) (*domain.CartSnapshot, error) {
	var doc snapshotDocument

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return doc.toSnapshot()
}

// UpsertSnapshot replaces the stored cart with s. Writes are whole snapshots,
// so the last one wins.
func (m *mongoRepository) UpsertSnapshot(ctx context.Context, s domain.CartSnapshot) error {
	doc := toDocument(s)

	filter := bson.M{"session_id": doc.SessionID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) DeleteSnapshot(ctx context.Context, sessionID string, savedBefore time.Time) error {
	filter := bson.M{
		"session_id": sessionID,
		"updated_at": bson.M{"$lt": savedBefore},
	}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(snapshotTTL.Seconds())),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// CreateIndexes ensures the carts collection indexes exist.
func CreateIndexes(ctx context.Context, repo SnapshotRepository) error {
	m, ok := repo.(*mongoRepository)
	if !ok {
		return nil
	}
	return m.CreateIndexes(ctx)
}
