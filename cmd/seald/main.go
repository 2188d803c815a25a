package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/bitseal-network/seald/internal/config"
	"github.com/bitseal-network/seald/internal/core/application"
	dbbadger "github.com/bitseal-network/seald/internal/infrastructure/storage/db/badger"
	"github.com/bitseal-network/seald/pkg/explorer/esplora"
	"github.com/bitseal-network/seald/pkg/observer"
	"github.com/bitseal-network/seald/pkg/taggedhash"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.SetLevel(config.GetLogLevel())

	explorerSvc, err := esplora.NewService(
		config.GetString(config.ExplorerEndpointKey),
	)
	if err != nil {
		log.WithError(err).Fatal("cannot reach the explorer")
	}

	repo, err := dbbadger.NewSealRepositoryImpl(config.GetDbDir(), nil)
	if err != nil {
		log.WithError(err).Fatal("cannot open the seal registry")
	}

	observerSvc := observer.NewService(observer.Opts{
		ExplorerSvc:            explorerSvc,
		IntervalInMilliseconds: config.GetInt(config.ObserverIntervalKey),
		RequestsPerSecond: config.GetFloat(
			config.ObserverRequestsPerSecondKey,
		),
		ErrorHandler: func(err error) {
			log.WithError(err).Warn("observation error")
		},
	})

	sealSvc := application.NewSealService(application.Opts{
		Repo:        repo,
		ExplorerSvc: explorerSvc,
		ObserverSvc: observerSvc,
		ProtocolTag: taggedhash.NewProtocolTag(
			config.GetString(config.ProtocolTagKey),
		),
	})

	if err := sealSvc.Start(); err != nil {
		log.WithError(err).Fatal("cannot start the seal service")
	}
	defer sealSvc.Stop()

	log.Info("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")
}
