package main

import (
	"lactacare/internal/config"
	"lactacare/internal/database"
	"lactacare/internal/repository"

	"go.uber.org/zap"
)

// stores holds the repositories selected by STORE_DRIVER
type stores struct {
	containers   repository.ContainerRepository
	reservations repository.ReservationRepository
	readings     repository.ReadingRepository
	alerts       repository.AlertStore
	db           *database.DB // nil for the memory driver
}

func openStores(cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("⚠️ Using in-memory store, data is lost on restart")
		return &stores{
			containers:   repository.NewContainerRepository(),
			reservations: repository.NewReservationRepository(),
			readings:     repository.NewReadingRepository(),
			alerts:       repository.NewAlertStore(),
		}, nil
	}

	db, err := database.FromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &stores{
		containers:   database.NewContainerStore(db),
		reservations: database.NewReservationStore(db),
		readings:     database.NewReadingStore(db),
		alerts:       database.NewAlertStore(db),
		db:           db,
	}, nil
}

func (s *stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
