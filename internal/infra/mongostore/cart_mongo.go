package mongostore

import (
	"context"
	"time"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartItemsCollection = "cart_items"

type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(cartItemsCollection)}
}

func (r *CartRepository) ListItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []cartItemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.CartItem, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// upsertで同じ商品の数量を加算
func (r *CartRepository) AddItem(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	filter := bson.M{"userId": item.UserID, "productId": item.ProductID}
	update := bson.M{
		"$inc": bson.M{"productQuantity": item.Quantity},
		"$set": bson.M{
			"productName":  item.ProductName,
			"productPrice": item.UnitPrice,
			"updatedAt":    item.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":         item.ID,
			"category":    item.Category,
			"productType": item.ProductType,
			"createdAt":   item.CreatedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var d cartItemDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d); err != nil {
		return model.CartItem{}, translateErr(err)
	}
	return d.toModel(), nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID string, itemID string, qty int64) (model.CartItem, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"productQuantity": qty, "updatedAt": time.Now()}}

	var d cartItemDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": itemID, "userId": userID}, update, opts).Decode(&d)
	if err != nil {
		return model.CartItem{}, translateErr(err)
	}
	return d.toModel(), nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, userID string, itemID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": itemID, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}
