package repository

import (
	"github.com/hiretrack/hiretrack/internal/config"
	"github.com/hiretrack/hiretrack/internal/domain/notification"
	"github.com/hiretrack/hiretrack/internal/domain/signal"
	"github.com/hiretrack/hiretrack/internal/kvstore"
	"github.com/hiretrack/hiretrack/internal/logger"
	kvRepo "github.com/hiretrack/hiretrack/internal/repository/kv"
)

func NewNotificationRepository(store kvstore.Store, cfg *config.Configuration, logger *logger.Logger) notification.Repository {
	return kvRepo.NewNotificationRepository(store, logger, cfg.Notifications.MaxEntries)
}

func NewSignalRepository(store kvstore.Store, logger *logger.Logger) signal.Repository {
	return kvRepo.NewSignalRepository(store, logger)
}
