package api

import (
	"fmt"
	"time"

	"vending-machine/internal/change"
	"vending-machine/internal/models"
	"vending-machine/internal/service"
)

type ErrorResponse struct {
	Errors string `json:"errors"`
}

type AuthRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

type InsertRequest struct {
	Value float64 `json:"value" binding:"required,gt=0"`
}

type ChangeRequest struct {
	Amount *float64 `json:"amount" binding:"required"`
}

type RestockProductRequest struct {
	ProductID int `json:"productId" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,gt=0"`
}

// BreakdownDTO keys are face values in major units, e.g. {"coins":{"5":1}}.
type BreakdownDTO struct {
	Coins     map[string]int `json:"coins,omitempty"`
	Banknotes map[string]int `json:"banknotes,omitempty"`
}

type ProductResponse struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

type SessionResponse struct {
	Inserted float64      `json:"inserted"`
	Escrow   BreakdownDTO `json:"escrow"`
}

type StatusResponse struct {
	Session  SessionResponse   `json:"session"`
	Products []ProductResponse `json:"products"`
}

type PurchaseResponse struct {
	Message    string          `json:"message"`
	Product    ProductResponse `json:"product"`
	Change     BreakdownDTO    `json:"change"`
	ChangeText string          `json:"changeText"`
}

type ReturnResponse struct {
	Message  string       `json:"message"`
	Returned BreakdownDTO `json:"returned"`
}

type ChangeResponse struct {
	Amount    float64      `json:"amount"`
	Breakdown BreakdownDTO `json:"breakdown"`
	Text      string       `json:"text"`
}

type InventoryResponse struct {
	Coins     map[string]int `json:"coins"`
	Banknotes map[string]int `json:"banknotes"`
	Total     float64        `json:"total"`
}

type SaleResponse struct {
	ID          string    `json:"id"`
	ProductID   int       `json:"productId"`
	ProductName string    `json:"productName"`
	Price       float64   `json:"price"`
	Inserted    float64   `json:"inserted"`
	Change      float64   `json:"change"`
	ChangeText  string    `json:"changeText"`
	CreatedAt   time.Time `json:"createdAt"`
}

func countsToDTO(c change.Counts) map[string]int {
	if len(c) == 0 {
		return nil
	}
	out := make(map[string]int, len(c))
	for v, n := range c {
		out[v.String()] = n
	}
	return out
}

func breakdownToDTO(b change.Breakdown) BreakdownDTO {
	return BreakdownDTO{
		Coins:     countsToDTO(b.Coins),
		Banknotes: countsToDTO(b.Banknotes),
	}
}

func countsFromDTO(m map[string]int) (change.Counts, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(change.Counts, len(m))
	for k, n := range m {
		v, err := change.ParseAmount(k)
		if err != nil {
			return nil, err
		}
		out[v] += n
	}
	return out, nil
}

func (d BreakdownDTO) toBreakdown() (change.Breakdown, error) {
	coins, err := countsFromDTO(d.Coins)
	if err != nil {
		return change.Breakdown{}, fmt.Errorf("coins: %w", err)
	}
	banknotes, err := countsFromDTO(d.Banknotes)
	if err != nil {
		return change.Breakdown{}, fmt.Errorf("banknotes: %w", err)
	}
	return change.Breakdown{Coins: coins, Banknotes: banknotes}, nil
}

func productToResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:    p.ID,
		Name:  p.Name,
		Price: p.Price.Float(),
		Stock: p.Stock,
	}
}

func productsToResponse(products []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productToResponse(p))
	}
	return out
}

func sessionToResponse(s service.Session) SessionResponse {
	return SessionResponse{
		Inserted: s.Inserted.Float(),
		Escrow:   breakdownToDTO(s.Escrow),
	}
}

func inventoryToResponse(inv change.Inventory) InventoryResponse {
	coins := countsToDTO(inv.Coins)
	if coins == nil {
		coins = map[string]int{}
	}
	banknotes := countsToDTO(inv.Banknotes)
	if banknotes == nil {
		banknotes = map[string]int{}
	}
	return InventoryResponse{
		Coins:     coins,
		Banknotes: banknotes,
		Total:     inv.Total().Float(),
	}
}

func saleToResponse(s models.Sale) SaleResponse {
	return SaleResponse{
		ID:          s.ID.String(),
		ProductID:   s.ProductID,
		ProductName: s.ProductName,
		Price:       s.Price.Float(),
		Inserted:    s.Inserted.Float(),
		Change:      s.Change.Float(),
		ChangeText:  s.ChangeText,
		CreatedAt:   s.CreatedAt,
	}
}
