package store

import (
	"studio-backend/internal/config"
	"studio-backend/internal/database"
	"studio-backend/internal/logger"
)

// OpenBackend 설정된 드라이버의 문서 백엔드. 반환된 close는 항상 호출 가능
func OpenBackend(cfg config.StoreConfig, log *logger.Logger) (Backend, func(), error) {
	switch cfg.Driver {
	case "postgres", "sqlite":
		db, err := database.Open(database.Config{
			Driver:   cfg.Driver,
			DSN:      cfg.DSN,
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
			TimeZone: cfg.DBTimeZone,
		})
		if err != nil {
			return nil, func() {}, err
		}
		if err := database.Ping(db); err != nil {
			database.Close(db)
			return nil, func() {}, err
		}
		log.Info("database connected", "driver", cfg.Driver)
		return NewGormBackend(db), func() { database.Close(db) }, nil
	default:
		log.Info("school document stored on disk", "path", cfg.Path)
		return NewFileBackend(cfg.Path), func() {}, nil
	}
}
