package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/novamart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartTTL = 90 * 24 * time.Hour

type mongoRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

func (m *mongoRepository) AddItem(ctx context.Context, userID string, item domain.CartItem) (domain.CartItem, bool, error) {
	if item.Quantity <= 0 {
		return domain.CartItem{}, false, ErrInvalidQuantity
	}

	// Two attempts: a concurrent insert of the same cart surfaces as a duplicate key
	// on user_id, after which the increment path matches.
	for attempt := 0; attempt < 2; attempt++ {
		line, ok, err := m.incrementItem(ctx, userID, item.ProductID, item.Quantity)
		if err != nil {
			return domain.CartItem{}, false, err
		}
		if ok {
			return line, false, nil
		}

		line, err = m.pushItem(ctx, userID, item)
		if err == nil {
			return line, true, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return domain.CartItem{}, false, err
		}
	}
	return domain.CartItem{}, false, fmt.Errorf("failed to add item: concurrent cart modification")
}

func (m *mongoRepository) incrementItem(ctx context.Context, userID string, productID int64, delta int) (domain.CartItem, bool, error) {
	now := m.now()
	filter := bson.M{"user_id": userID, "items.product_id": productID}
	update := bson.M{
		"$inc": bson.M{"items.$[elem].quantity": delta},
		"$set": bson.M{
			"items.$[elem].updated_at": now,
			"updated_at":               now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{bson.M{"elem.product_id": productID}}}).
		SetReturnDocument(options.After)

	var cart domain.Cart
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.CartItem{}, false, nil
	}
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("failed to update existing item: %w", err)
	}
	line, _ := cart.Find(productID)
	return line, true, nil
}

func (m *mongoRepository) pushItem(ctx context.Context, userID string, item domain.CartItem) (domain.CartItem, error) {
	now := m.now()
	item.AddedAt = now
	item.UpdatedAt = now

	filter := bson.M{"user_id": userID, "items.product_id": bson.M{"$ne": item.ProductID}}
	update := bson.M{
		"$push":        bson.M{"items": item},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := m.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("failed to add new item: %w", err)
	}
	return item, nil
}

func (m *mongoRepository) UpdateItemQuantity(ctx context.Context, userID string, productID int64, quantity int) error {
	return m.setQuantity(ctx, userID, "product_id", productID, quantity)
}

func (m *mongoRepository) UpdateLineQuantity(ctx context.Context, userID, lineID string, quantity int) error {
	return m.setQuantity(ctx, userID, "line_id", lineID, quantity)
}

func (m *mongoRepository) setQuantity(ctx context.Context, userID, field string, value interface{}, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	now := m.now()
	filter := bson.M{
		"user_id":        userID,
		"items." + field: value,
	}

	update := bson.M{
		"$set": bson.M{
			"items.$[elem].quantity":   quantity,
			"items.$[elem].updated_at": now,
			"updated_at":               now,
		},
	}

	arrayFilters := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"elem." + field: value},
		},
	})

	result, err := m.collection.UpdateOne(ctx, filter, update, arrayFilters)
	if err != nil {
		return fmt.Errorf("failed to update item quantity: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (m *mongoRepository) RemoveItem(ctx context.Context, userID string, productID int64) error {
	return m.pull(ctx, userID, "product_id", productID)
}

func (m *mongoRepository) RemoveLine(ctx context.Context, userID, lineID string) error {
	return m.pull(ctx, userID, "line_id", lineID)
}

func (m *mongoRepository) pull(ctx context.Context, userID, field string, value interface{}) error {
	filter := bson.M{"user_id": userID, "items." + field: value}
	update := bson.M{
		"$pull": bson.M{
			"items": bson.M{field: value},
		},
		"$set": bson.M{"updated_at": m.now()},
	}

	result, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}

	return nil
}

func (m *mongoRepository) FindLine(ctx context.Context, lineID string) (string, domain.CartItem, error) {
	var cart domain.Cart
	filter := bson.M{"items.line_id": lineID}
	opts := options.FindOne().SetProjection(bson.M{
		"user_id": 1,
		"items":   bson.M{"$elemMatch": bson.M{"line_id": lineID}},
	})
	err := m.collection.FindOne(ctx, filter, opts).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", domain.CartItem{}, ErrItemNotFound
	}
	if err != nil {
		return "", domain.CartItem{}, fmt.Errorf("failed to find line: %w", err)
	}
	if len(cart.Items) == 0 {
		return "", domain.CartItem{}, ErrItemNotFound
	}
	return cart.UserID, cart.Items[0], nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}

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
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "items.line_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(cartTTL.Seconds())),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// EnsureIndexes creates the cart collection indexes when repo is Mongo-backed.
func EnsureIndexes(ctx context.Context, repo CartRepository) error {
	if m, ok := repo.(*mongoRepository); ok {
		return m.CreateIndexes(ctx)
	}
	return nil
}
