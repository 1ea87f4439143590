package db

import (
	"context"
	"fmt"
	"sync"

	"vending-machine/internal/models"

	"github.com/alexedwards/argon2id"
)

type memorySalesJournal struct {
	mu    sync.Mutex
	sales []models.Sale
}

// NewMemorySalesJournal keeps sales in process memory; they are lost on restart.
func NewMemorySalesJournal() SalesJournal {
	return &memorySalesJournal{}
}

func (m *memorySalesJournal) RecordSale(_ context.Context, sale models.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sales = append(m.sales, sale)
	return nil
}

// ListSales returns the newest sales first.
func (m *memorySalesJournal) ListSales(_ context.Context, limit int) ([]models.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.sales)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]models.Sale, 0, n)
	for i := len(m.sales) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.sales[i])
	}
	return out, nil
}

type staticAuthDB struct {
	username     string
	passwordHash string
}

// NewStaticAuthDB serves a single operator account taken from configuration.
func NewStaticAuthDB(username, password string) (AuthDB, error) {
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("hash operator password: %w", err)
	}
	return &staticAuthDB{username: username, passwordHash: hash}, nil
}

func (s *staticAuthDB) GetOperatorAuthData(_ context.Context, username string) (int, string, error) {
	if username != s.username {
		return 0, "", fmt.Errorf("%w: %q", ErrOperatorNotFound, username)
	}
	return 1, s.passwordHash, nil
}
