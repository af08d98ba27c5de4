package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/arshitcc/Ping-Park/app/config"

	_ "github.com/lib/pq"
)

type RepositoryAdapter struct {
	db     *sql.DB
	logger *slog.Logger

	User    *UserRepository
	Chat    *ChatRepository
	Message *MessageRepository
}

func NewRepositoryAdapter(cfg config.DatabaseConfig, cfgConn config.DatabaseConnectionsConfig, logger *slog.Logger) (*RepositoryAdapter, error) {
	connection := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
	db, err := sql.Open("postgres", connection)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfgConn.MaxOpenConns)
	db.SetMaxIdleConns(cfgConn.MaxIdleConns)
	db.SetConnMaxLifetime(cfgConn.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfgConn.ConnMaxIdleTime)

	logger.Info("adapter initialization: stage 1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	userRepo, err := NewUserRepository(db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("adapter initialization: stage 2")

	chatRepo, err := NewChatRepository(db, logger)
	if err != nil {
		return nil, err
	}

	messageRepo, err := NewMessageRepository(db, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("adapter initialization: stage 3")

	return &RepositoryAdapter{db: db, logger: logger, User: userRepo, Chat: chatRepo, Message: messageRepo}, nil
}

func (r *RepositoryAdapter) Close() error {
	if err := r.db.Close(); err != nil {
		r.logger.Error("failed to close database", "error", err)
		return err
	}
	return nil
}

func (r *RepositoryAdapter) HealthCheck(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
