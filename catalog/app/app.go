package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bookcatalog/catalog-service/catalog/config"
	"github.com/bookcatalog/catalog-service/catalog/internal/handler"
	"github.com/bookcatalog/catalog-service/catalog/internal/repository"
	"github.com/bookcatalog/catalog-service/catalog/internal/server"
	"github.com/bookcatalog/catalog-service/catalog/internal/service"
	"github.com/bookcatalog/catalog-service/catalog/migrations"
	"github.com/bookcatalog/catalog-service/pkg/kafka"
	"github.com/bookcatalog/catalog-service/pkg/logger"
	"github.com/bookcatalog/catalog-service/pkg/postgres"
)

func Run(cfg *config.Config) {
	log := logger.NewLogger(cfg.Log, "catalog")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		log.Fatal("db init", zap.Error(err))
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		log.Fatal("repo", zap.Error(err))
	}

	// Event delivery is optional: without brokers the catalog runs
	// store-only.
	var (
		publisher *kafka.Publisher
		pub       service.Publisher
	)
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka)
		if err != nil {
			log.Fatal("kafka.NewProducer", zap.Error(err))
		}
		publisher = kafka.NewPublisher(producer)
		pub = publisher
	}
	svc := service.NewService(repo, pub, log)

	h := handler.New(svc, log)
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	if publisher != nil {
		if err = publisher.Close(); err != nil {
			log.Error("publisher.Close", zap.Error(err))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
}
