package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"xportconnect/config"
	"xportconnect/controllers"
	"xportconnect/events"
	"xportconnect/middleware"
	"xportconnect/repository"
	"xportconnect/routes"
	"xportconnect/service"
	"xportconnect/utils"
)

const chatTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from .env and the environment
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(middleware.NewContextHandler(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.SetDefault(logger)
	slog.Info("configuration loaded", slog.String("config", cfg.String()))

	// Open the document store
	repos, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Lifecycle event publisher
	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		slog.Info("publishing order events", slog.Any("brokers", cfg.Kafka.Brokers), slog.String("topic", cfg.Kafka.Topic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("close publisher", slog.Any("error", err))
		}
	}()

	// Initialize services and controllers
	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	rs := utils.Responder{Debug: !cfg.IsProduction()}
	timeout := cfg.Database.Timeout

	identity := service.NewIdentityService(repos.Users, issuer)
	catalog := service.NewCatalogService(repos.Products, repos.Users)
	orders := service.NewOrderService(*repos, publisher)
	projector := service.NewProjector(repos.Users, repos.Products)
	chat := utils.NewChatService(cfg.Chat.APIKey, cfg.Chat.BaseURL, cfg.Chat.Model)

	router := mux.NewRouter()
	routes.RegisterRoutes(router, routes.Controllers{
		Users:    controllers.NewUserController(identity, rs, timeout),
		Products: controllers.NewProductController(catalog, rs, timeout),
		Orders:   controllers.NewOrderController(orders, projector, rs, timeout),
		Chat:     controllers.NewChatController(chat, rs, chatTimeout),
		Health:   controllers.NewHealthController(repos.Ping, rs, timeout),
	}, issuer, rs, middleware.NewMetrics())

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      chatTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start the server
	errc := make(chan error, 1)
	go func() {
		slog.Info("server is running", slog.String("port", cfg.HTTP.Port), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-sigc:
		slog.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// openStore returns the configured repositories and a function releasing them.
func openStore(cfg *config.Config) (*repository.Repositories, func(), error) {
	if cfg.Database.Driver == "memory" {
		slog.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryRepositories(), func() {}, nil
	}

	ctx := context.Background()
	client, err := utils.ConnectDB(ctx, cfg.Database.URI, cfg.Database.Timeout)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			slog.Error("disconnect mongo", slog.Any("error", err))
		}
	}

	idxCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
	defer cancel()
	if err := repository.EnsureIndexes(idxCtx, client, cfg.Database.Name); err != nil {
		closeFn()
		return nil, nil, err
	}
	slog.Info("connected to MongoDB", slog.String("database", cfg.Database.Name))
	return repository.NewMongoRepositories(client, cfg.Database.Name), closeFn, nil
}
