package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mediinsight/platform/pkg/cohort"
	"github.com/mediinsight/platform/pkg/common/config"
	"github.com/mediinsight/platform/pkg/common/database"
	"github.com/mediinsight/platform/pkg/common/logger"
	"github.com/mediinsight/platform/pkg/dashboard"
	"github.com/mediinsight/platform/pkg/notify"
	"github.com/mediinsight/platform/pkg/session"
)

func main() {
	logger.Init()
	cfg := config.Load()

	profile, err := cohort.LoadProfile(cfg.ProfilePath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.ProfilePath).Warn("Falling back to default cohort profile")
		profile = cohort.DefaultProfile()
	}

	var storeOpts []session.Option
	if cfg.SessionCacheEnabled {
		cache := session.NewCache(database.GetRedis(), cfg.SessionTTL)
		storeOpts = append(storeOpts, session.WithCache(cache))
	}
	store := session.NewStore(cfg.SessionTTL, storeOpts...)

	var dispatcher notify.Dispatcher = notify.StubDispatcher{}
	var kafkaDispatcher *notify.KafkaDispatcher
	if cfg.RemindersViaKafka {
		kafkaDispatcher = notify.NewKafkaDispatcher(cfg.KafkaReminderTopic)
		dispatcher = kafkaDispatcher
	}

	handler := dashboard.NewHandler(cfg, profile, store, dispatcher)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck(store)).Methods("GET")
	handler.Register(router)
	router.Use(dashboard.Logging, dashboard.Recovery, dashboard.CORS)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Dashboard Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Dashboard Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	if kafkaDispatcher != nil {
		if err := kafkaDispatcher.Close(); err != nil {
			logger.Log.WithError(err).Error("Failed to close reminder producer")
		}
	}
	if cfg.SessionCacheEnabled {
		if err := database.CloseRedis(); err != nil {
			logger.Log.WithError(err).Error("Failed to close Redis client")
		}
	}

	logger.Log.Info("Dashboard Service stopped")
}

func healthCheck(store *session.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","sessions":%d}`, store.Count())
	}
}
