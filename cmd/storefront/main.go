package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/api"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/cache"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/cart"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/config"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/events"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/notify"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/search"
	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/server"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	var store cache.CartCache
	if cfg.RedisAddr != "" {
		store = cache.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
		log.WithField("addr", cfg.RedisAddr).Info("using redis cart cache")
	} else {
		mem := cache.NewMemoryStore()
		defer mem.Close()
		store = mem
		log.Info("using in-process cart cache")
	}

	client := api.NewClient(cfg.CartAPIBaseURL, log)
	notifier := notify.LogNotifier{Log: log}
	synchronizer := cart.NewSynchronizer(client, store, notifier, log, cfg.CartFreshness)

	index := search.NewIndex()
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go refreshCatalog(refreshCtx, client, index, cfg.CatalogRefresh, log)

	if len(cfg.KafkaBrokers) > 0 {
		consumer := events.NewConsumer(store, log, cfg.KafkaBrokers...)
		consumerCtx, stopConsumer := context.WithCancel(context.Background())
		defer consumer.Close()
		defer stopConsumer() // LIFO: cancel the read loop before closing the reader
		go consumer.Run(consumerCtx)
	}

	cartHandler := server.NewCartHandler(synchronizer, cfg.RequestTimeout)
	searchHandler := server.NewSearchHandler(index, cfg.SearchDebounce)
	defer searchHandler.Close()
	router := server.NewRouter(cartHandler, searchHandler, cfg.JWTSecret, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
}

// refreshCatalog seeds the search index and keeps it current. The index
// only rebuilds when the product id set actually changed.
func refreshCatalog(ctx context.Context, client *api.Client, index *search.Index, every time.Duration, log logrus.FieldLogger) {
	load := func() {
		loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		products, err := client.GetProducts(loadCtx)
		if err != nil {
			log.WithError(err).Warn("catalog refresh failed")
			return
		}
		if index.Update(products) {
			log.WithField("products", len(products)).Info("search index rebuilt")
		}
	}

	load()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			load()
		case <-ctx.Done():
			return
		}
	}
}
