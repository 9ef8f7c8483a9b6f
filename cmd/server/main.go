package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"order-service/internal/breaker"
	"order-service/internal/config"
	"order-service/internal/database"
	"order-service/internal/events"
	"order-service/internal/metrics"
	"order-service/internal/repo"
	"order-service/internal/server"
	"order-service/internal/service"
	"order-service/internal/userapi"
	"order-service/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	db, err := database.NewPostgres(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	health := database.NewService(db, cfg.DBDatabase)
	defer health.Close()

	itemRepo := repo.NewItemRepo(db)
	orderRepo := repo.NewOrderRepo(db)
	outboxRepo := repo.NewOutboxRepo(db)

	// One breaker instance guards every call to the user directory.
	userBreaker := breaker.New("UserService", breaker.Config{
		FailureRate: cfg.BreakerFailureRate,
		MinRequests: cfg.BreakerMinRequests,
		OpenFor:     cfg.BreakerOpenFor,
	})
	users := userapi.NewClient(
		cfg.UserServiceBaseURL,
		&http.Client{Timeout: cfg.UserServiceTimeout},
		userBreaker,
	)

	creator := service.NewOrderCreator(db, itemRepo, orderRepo, outboxRepo, cfg.OrderTopic)
	adminOrders := service.NewAdminOrderService(db, orderRepo, outboxRepo, creator, users, cfg.OrderTopic)
	userOrders := service.NewUserOrderService(db, orderRepo, outboxRepo, creator, users, cfg.OrderTopic)
	orders := service.NewOrderService(adminOrders, userOrders)
	items := service.NewItemService(itemRepo)

	serverMetrics := metrics.NewServerMetrics("api")
	go reportBreakerState(ctx, userBreaker, serverMetrics)

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.OrderTopic)
	if publisher.Enabled() {
		defer publisher.Close()
		dispatcher := worker.NewOutboxDispatcher(outboxRepo, publisher, cfg.OutboxEvery)
		go dispatcher.Run(ctx)
	}

	router := server.NewRouter(server.Deps{
		Items:   items,
		Orders:  orders,
		Health:  health,
		Metrics: serverMetrics,
		Origins: cfg.CORSOrigins,
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	go func() {
		log.Printf("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func reportBreakerState(ctx context.Context, b *breaker.Breaker, m *metrics.ServerMetrics) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.BreakerState.Set(float64(b.State()))
		}
	}
}
