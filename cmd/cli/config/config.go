package config

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/crucial707/school-issues/internal/auth"
	appconfig "github.com/crucial707/school-issues/internal/config"
	"github.com/crucial707/school-issues/internal/db"
	"github.com/crucial707/school-issues/internal/repo"
)

// OpenUserRepo connects to the credential store configured by the
// environment (and an optional .env file), creating the users table if
// needed. The returned function closes the connection.
func OpenUserRepo(ctx context.Context) (*repo.UserRepo, func(), error) {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	conn, dialect, err := db.Connect(ctx, db.Options{
		Driver:   cfg.DBDriver,
		Path:     cfg.DBPath,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
	})
	if err != nil {
		return nil, nil, err
	}

	users := repo.NewUserRepo(conn, dialect, auth.NewHasher(cfg.PasswordPepper))
	if err := users.Init(ctx); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return users, func() { conn.Close() }, nil
}
