package models

import (
	"time"

	"vending-machine/internal/change"

	"github.com/google/uuid"
)

type Product struct {
	ID    int
	Name  string
	Price change.Amount
	Stock int
}

type Operator struct {
	ID           int
	Username     string
	PasswordHash string
}

type Sale struct {
	ID          uuid.UUID
	ProductID   int
	ProductName string
	Price       change.Amount
	Inserted    change.Amount
	Change      change.Amount
	ChangeText  string
	CreatedAt   time.Time
}
