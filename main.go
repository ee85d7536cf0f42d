package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/alvine998/marketplace-backend/awspkg"
	"github.com/alvine998/marketplace-backend/config"
	"github.com/alvine998/marketplace-backend/controllers"
	"github.com/alvine998/marketplace-backend/database"
	"github.com/alvine998/marketplace-backend/kafka"
	"github.com/alvine998/marketplace-backend/logger"
	"github.com/alvine998/marketplace-backend/repository"
	"github.com/alvine998/marketplace-backend/routes"
	"github.com/alvine998/marketplace-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()

	if err := database.Connect(cfg); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	var producer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		producer = kafka.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.OrderEventsTopic)
		defer producer.Close()
	}

	var snsClient awspkg.SNSPublisher
	if cfg.UseSNS {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Log.Fatal("Failed to load AWS config", zap.Error(err))
		}
		snsClient = awspkg.NewSNSClient(awsCfg)
	}

	repos := repository.NewRepositories(database.DB)
	uow := repository.NewGormUnitOfWork(database.DB)

	authSvc := services.NewAuthService(repos.Users, []byte(cfg.JWTSecret), logger.Log)
	orderSvc := services.NewOrderService(uow, repos.Orders, producerOrNil(producer), snsClient, cfg.SNSTopicARN, logger.Log)
	processor := services.NewMidtransClient(cfg.MidtransServerKey, cfg.MidtransProduction)
	paymentSvc := services.NewPaymentService(repos.Orders, repos.Users, processor, orderSvc, logger.Log)

	cache := controllers.NewCacheManager(redisClient)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	routes.RegisterRoutes(router, routes.Controllers{
		Auth:     controllers.NewAuthController(authSvc),
		Products: controllers.NewProductController(repos.Products, cache),
		Carts:    controllers.NewCartController(repos.Carts, repos.Products),
		Vouchers: controllers.NewVoucherController(repos.Vouchers),
		Orders:   controllers.NewTransactionController(orderSvc),
		Payments: controllers.NewPaymentController(paymentSvc),
	}, []byte(cfg.JWTSecret))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("Marketplace backend listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("Shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Log.Info("Server shutdown complete")
}

// producerOrNil keeps the nil interface nil when Kafka is disabled.
func producerOrNil(p *kafka.Producer) kafka.ProducerAPI {
	if p == nil {
		return nil
	}
	return p
}
