package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"chat-relay/config"
	"chat-relay/data/mongoutil"
	"chat-relay/logger"
	"chat-relay/middleware"
	"chat-relay/module/chat/handler"
	"chat-relay/module/chat/service"
	"chat-relay/module/chat/store"
	svcchat "chat-relay/service/chat"
	svckafka "chat-relay/service/kafka"
	"chat-relay/service/storage"
	"chat-relay/tools/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persistence first: nothing works without it.
	mongoCli, err := mongoutil.NewMongoDB(ctx, &mongoutil.Config{
		URI:         cfg.MongoURI,
		Database:    cfg.MongoDatabase,
		MaxPoolSize: cfg.MongoPoolSize,
		MaxRetry:    cfg.MongoMaxRetry,
		Timeout:     cfg.MongoTimeout,
	})
	if err != nil {
		logger.Fatalf("mongo: %v", err)
	}
	defer func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoCli.Close(cctx)
	}()
	if err := mongoutil.EnsureIndexes(ctx, mongoCli.GetDB()); err != nil {
		logger.Fatalf("mongo indexes: %v", err)
	}
	logger.Info("[main] mongo connected")

	// Relay next: if the broker never comes up within the bounded retry
	// window, refuse to start rather than serve with no push path.
	relay, err := svckafka.NewRelay(svckafka.Config{
		Brokers:      cfg.KafkaBrokers,
		Topic:        cfg.KafkaTopic,
		GroupID:      cfg.KafkaGroup,
		InitAttempts: cfg.KafkaInitAttempts,
	})
	if err != nil {
		logger.Fatalf("kafka: %v", err)
	}
	defer func() { _ = relay.Close() }()
	logger.Infof("[main] kafka connected topic=%s group=%s", cfg.KafkaTopic, cfg.KafkaGroup)

	// Presence is cosmetic; run without it if redis is down.
	var presence *storage.Presence
	presence, err = storage.NewPresence(ctx, storage.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.PresenceTTL)
	if err != nil {
		logger.Warnf("[main] redis unavailable, presence disabled: %v", err)
		presence = nil
	} else {
		defer func() { _ = presence.Close() }()
	}

	db := mongoCli.GetDB()
	users := store.NewUserStore(db)
	messages := store.NewMessageStore(db)
	requests := store.NewFriendRequestStore(db)

	jwtOpts := security.DefaultOptions([]byte(cfg.JWTSecret))
	jwtOpts.TTL = cfg.TokenTTL

	userSvc := service.NewUserService(users, jwtOpts)
	messageSvc := service.NewMessageService(messages, relay)
	friendSvc := service.NewFriendService(requests, users)

	// Fan-out: the relay's consumer loop feeds the broadcaster, which pushes
	// every event to every registered connection.
	connMgr := svcchat.NewConnManager()
	defer connMgr.Close()
	broadcaster := svcchat.NewBroadcaster(connMgr)
	relay.RegisterHandler(broadcaster.HandleEvent)
	go relay.Run(ctx)

	gateway := svcchat.NewGateway(connMgr, presence, jwtOpts, cfg.SendQueueSize)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS())

	probes := handler.HealthProbes{
		Mongo: func(c *gin.Context) bool { return mongoCli.Ping(c.Request.Context()) == nil },
		Kafka: relay.Healthy,
	}
	if presence != nil {
		probes.Redis = func(c *gin.Context) bool { return presence.Healthy(c.Request.Context()) }
	}
	h := handler.New(userSvc, messageSvc, friendSvc, presence, probes, int64(cfg.HistoryLimit))
	h.Register(r, jwtOpts)
	r.GET("/ws", gateway.HandleWS)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
	go func() {
		logger.Infof("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("[main] shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Errorf("[main] http shutdown: %v", err)
	}
}
