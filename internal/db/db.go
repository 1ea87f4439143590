package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vending-machine/internal/config"
	"vending-machine/internal/models"

	_ "github.com/lib/pq"
)

var ErrOperatorNotFound = errors.New("operator not found")

// SalesJournal is an append-only record of completed purchases. It is never
// read back to rebuild machine state.
type SalesJournal interface {
	RecordSale(ctx context.Context, sale models.Sale) error
	ListSales(ctx context.Context, limit int) ([]models.Sale, error)
}

type AuthDB interface {
	GetOperatorAuthData(ctx context.Context, username string) (int, string, error)
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %s:%s/%s: %w", cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseName, err)
	}
	return db, nil
}
