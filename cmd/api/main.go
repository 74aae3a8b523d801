package main

import (
	"context"
	"log"
	"time"

	"thokmarket/internal/config"
	"thokmarket/internal/events"
	"thokmarket/internal/handler"
	"thokmarket/internal/infra/db"
	"thokmarket/internal/infra/mongostore"
	infraRepo "thokmarket/internal/infra/repository"
	"thokmarket/internal/middleware"
	"thokmarket/internal/observability"
	repo "thokmarket/internal/repository"
	"thokmarket/internal/server"
	"thokmarket/internal/usecase"
	auth "thokmarket/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	// .envは無くてもよい（本番は環境変数）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := observability.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	//DB接続
	gormDB, err := db.Connect(cfg.PostgresDSN())
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	typeRepo := infraRepo.NewProductTypeGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	// 注文とカートの保存先（postgres / mongo）
	var (
		txManager repo.TransactionManager
		orderRepo repo.OrderRepository
		cartRepo  repo.CartRepository
	)
	switch cfg.OrderStore {
	case config.OrderStoreMongo:
		client, mdb, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return err
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		if err := mongostore.EnsureIndexes(ctx, mdb); err != nil {
			return err
		}
		txManager = mongostore.NewTxManager(mdb, auditRepo, logger)
		orderRepo = mongostore.NewOrderRepository(mdb)
		cartRepo = mongostore.NewCartRepository(mdb)
	default:
		txManager = infraRepo.NewTxManagerGorm(gormDB)
		orderRepo = infraRepo.NewOrderGormRepository(gormDB)
		cartRepo = infraRepo.NewCartGormRepository(gormDB)
	}
	logger.Info("order store selected", zap.String("store", cfg.OrderStore))

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()

	metrics := observability.NewMetrics()

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	sessions := auth.NewJWTSessionManager(cfg.JWTSecret, cfg.SessionTTL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, sessions, clock)
	logoutUC := auth.NewLogoutUsecase(userRepo)
	meUC := auth.NewMeUsecase(userRepo)

	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, publisher, metrics, idGen, clock, logger)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, idGen, clock, logger)
	productUC := usecase.NewProductUsecase(productRepo, typeRepo, auditRepo, idGen, clock, logger)
	catalogUC := usecase.NewCatalogUsecase(categoryRepo, typeRepo, idGen, clock, logger)
	auditUC := usecase.NewAuditLogUsecase(auditRepo, logger)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, logoutUC, meUC, orderUC, cfg.CookieSecure, logger)
	h := server.Handlers{
		Session:      middleware.Session(sessions, userRepo, logger),
		Auth:         authH,
		AdminUser:    handler.NewAdminUserHandler(cfg.AdminSignupKey, authH),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Catalog:      handler.NewCatalogHandler(catalogUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(auditUC),
	}

	opts := server.Options{
		Addr:            cfg.Addr(),
		FEURL:           cfg.FEURL,
		StaticDir:       cfg.StaticDir,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}

	//Server起動
	e := server.New(opts, h, logger, metrics)
	return server.Run(e, opts, logger)
}

// 注文イベントの送信先
func newPublisher(cfg config.Config) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case config.EventsRabbitMQ:
		p, err := events.NewRabbitPublisher(cfg.RabbitMQURL)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.EventsKafka:
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return events.NopPublisher{}, nil
	}
}
