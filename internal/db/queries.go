package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vending-machine/internal/change"
	"vending-machine/internal/models"
)

type salesJournalImplementation struct {
	db *sql.DB
}

func NewSalesJournal(dbConn *sql.DB) SalesJournal {
	return &salesJournalImplementation{
		db: dbConn,
	}
}

type authDBImplementation struct {
	db *sql.DB
}

func NewAuthDB(dbConn *sql.DB) AuthDB {
	return &authDBImplementation{
		db: dbConn,
	}
}

func (a *authDBImplementation) GetOperatorAuthData(ctx context.Context, username string) (int, string, error) {
	var (
		id           int
		passwordHash string
	)
	err := a.db.QueryRowContext(ctx, "SELECT id, password_hash FROM operators WHERE username=$1", username).
		Scan(&id, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", fmt.Errorf("%w: %q", ErrOperatorNotFound, username)
	}
	if err != nil {
		return 0, "", fmt.Errorf("failed to get operator auth data for '%s': %w", username, err)
	}
	return id, passwordHash, nil
}

// UpsertOperator stores an operator account, replacing the password of an existing one.
func UpsertOperator(ctx context.Context, dbConn *sql.DB, username, passwordHash string) error {
	_, err := dbConn.ExecContext(ctx, `
INSERT INTO operators (username, password_hash) VALUES ($1, $2)
ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash
`, username, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to upsert operator: %w", err)
	}
	return nil
}

func (s *salesJournalImplementation) RecordSale(ctx context.Context, sale models.Sale) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sales (id, product_id, product_name, price, inserted, change_amount, change_text, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, sale.ID, sale.ProductID, sale.ProductName, int64(sale.Price), int64(sale.Inserted), int64(sale.Change), sale.ChangeText, sale.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (s *salesJournalImplementation) ListSales(ctx context.Context, limit int) ([]models.Sale, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, product_id, product_name, price, inserted, change_amount, change_text, created_at
        FROM sales
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var (
			sale                     models.Sale
			price, inserted, changed int64
		)
		if err := rows.Scan(&sale.ID, &sale.ProductID, &sale.ProductName, &price, &inserted, &changed, &sale.ChangeText, &sale.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		sale.Price = change.Amount(price)
		sale.Inserted = change.Amount(inserted)
		sale.Change = change.Amount(changed)
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales: %w", err)
	}
	return sales, nil
}
