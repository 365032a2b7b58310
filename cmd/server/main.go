package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planora-hq/planora/modules"
	"github.com/planora-hq/planora/pkg/application"
	"github.com/planora-hq/planora/pkg/configuration"
	"github.com/planora-hq/planora/pkg/eventbus"
	"github.com/planora-hq/planora/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if conf.Prometheus.Enabled {
		metrics.Register(router, conf.Prometheus.Path)
	}

	srv := &http.Server{
		Addr:              conf.SocketAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Infof("listening on %s", conf.SocketAddress)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
