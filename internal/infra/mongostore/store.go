package mongostore

import (
	"context"
	"errors"

	"thokmarket/internal/domain/model"
	repo "thokmarket/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes は起動時に必要なインデックスを作る
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ordersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
		{
			Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "idempotencyKey", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotencyKey": bson.M{"$type": "string"}}),
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(cartItemsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repo.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repo.ErrConflict
	}
	return err
}

type txRepos struct {
	orders    repo.OrderRepository
	carts     repo.CartRepository
	auditLogs repo.AuditLogRepository
}

func (r *txRepos) Orders() repo.OrderRepository       { return r.orders }
func (r *txRepos) Carts() repo.CartRepository         { return r.carts }
func (r *txRepos) AuditLogs() repo.AuditLogRepository { return r.auditLogs }

// TxManager はMongo用。スタンドアロン構成を前提に、各操作は順番に実行するだけ
// （注文作成→カート削除の順なので、途中で落ちてもカートが残るだけ）。
type TxManager struct {
	repos *txRepos
}

func NewTxManager(db *mongo.Database, auditLogs repo.AuditLogRepository, logger *zap.Logger) *TxManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxManager{repos: &txRepos{
		orders:    NewOrderRepository(db),
		carts:     NewCartRepository(db),
		auditLogs: &auditAfterCommit{next: auditLogs, logger: logger},
	}}
}

func (tm *TxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(tm.repos)
}

// auditAfterCommit は確定済みの状態変更に続く監査ログ書き込み。
// ステータスはMongo側で既に更新されているので、失敗はログに残して呼び出し側へは返さない。
type auditAfterCommit struct {
	next   repo.AuditLogRepository
	logger *zap.Logger
}

func (a *auditAfterCommit) Create(ctx context.Context, l model.AuditLog) error {
	if err := a.next.Create(ctx, l); err != nil {
		a.logger.Error("audit log write failed",
			zap.String("resource_id", l.ResourceID),
			zap.String("action", string(l.Action)),
			zap.Error(err),
		)
	}
	return nil
}

func (a *auditAfterCommit) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	return a.next.List(ctx, f)
}
