package mongostore

import (
	"context"
	"errors"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ordersCollection = "orders"

type OrderRepository struct {
	col *mongo.Collection
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{col: db.Collection(ordersCollection)}
}

func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	_, err := r.col.InsertOne(ctx, toOrderDoc(order))
	return translateErr(err)
}

func (r *OrderRepository) FindByID(ctx context.Context, orderID string) (model.Order, error) {
	var d orderDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": orderID}).Decode(&d); err != nil {
		return model.Order{}, translateErr(err)
	}
	return d.toModel(), nil
}

func (r *OrderRepository) FindByIdempotencyKey(ctx context.Context, ownerID string, key string) (model.Order, bool, error) {
	var d orderDoc
	err := r.col.FindOne(ctx, bson.M{"ownerId": ownerID, "idempotencyKey": key}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return d.toModel(), true, nil
}

func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Order, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID})
}

func (r *OrderRepository) ListOpen(ctx context.Context) ([]model.Order, error) {
	return r.find(ctx, bson.M{"status": bson.M{"$nin": bson.A{
		string(model.OrderStatusDelivered),
		string(model.OrderStatusCancelled),
	}}})
}

// 新しい順
func (r *OrderRepository) find(ctx context.Context, filter bson.M) ([]model.Order, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []orderDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// {_id, version}で絞ったUpdateOneでcompare-and-set
func (r *OrderRepository) UpdateStatus(ctx context.Context, u repo.OrderStatusUpdate) error {
	set := bson.M{
		"status":    string(u.Status),
		"updatedAt": u.UpdatedAt,
	}
	update := bson.M{"$inc": bson.M{"version": 1}}
	if c := toCancellationDoc(u.Cancellation); c != nil {
		set["cancellation"] = c
	} else {
		update["$unset"] = bson.M{"cancellation": ""}
	}
	update["$set"] = set

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.OrderID, "version": u.ExpectedVersion}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": u.OrderID})
	if err != nil {
		return err
	}
	if n == 0 {
		return repo.ErrNotFound
	}
	return repo.ErrVersionConflict
}
