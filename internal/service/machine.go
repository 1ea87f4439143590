package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"vending-machine/internal/change"
	"vending-machine/internal/db"
	"vending-machine/internal/metrics"
	"vending-machine/internal/models"
	"vending-machine/pkg"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrOutOfStock          = errors.New("product out of stock")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUnknownDenomination = errors.New("unknown denomination")
	ErrNothingInserted     = errors.New("no money inserted")
	ErrInvalidQuantity     = errors.New("invalid quantity")
)

// MaxStock is the most items of one product the machine holds.
const MaxStock = 10_000

// Session is the money a customer has put in but not yet spent.
type Session struct {
	Inserted change.Amount
	Escrow   change.Breakdown
}

type Status struct {
	Session  Session
	Products []models.Product
}

type PurchaseResult struct {
	Product    models.Product
	Paid       change.Amount
	Change     change.Breakdown
	ChangeText string
	Message    string
}

type ChangeQuote struct {
	Amount    change.Amount
	Breakdown change.Breakdown
	Text      string
}

type MachineConfig struct {
	CoinValues     []change.Amount
	BanknoteValues []change.Amount
	InitialMoney   change.Inventory
	Products       []models.Product
	CurrencySymbol string
}

type MachineService interface {
	Products() []models.Product

	Status() Status

	Inventory() change.Inventory

	Insert(ctx context.Context, value change.Amount) (Session, error)

	Purchase(ctx context.Context, productID int) (PurchaseResult, error)

	ReturnMoney(ctx context.Context) (change.Breakdown, error)

	PreviewChange(amount change.Amount) (ChangeQuote, error)

	RestockProduct(ctx context.Context, productID, quantity int) (models.Product, error)

	RestockMoney(ctx context.Context, units change.Breakdown) (change.Inventory, error)

	Sales(ctx context.Context, limit int) ([]models.Sale, error)
}

// machineService owns the only mutable state of the machine. mu serialises
// purchases so that one completes, inventory included, before the next starts.
type machineService struct {
	mu        sync.Mutex
	coins     []change.Amount
	banknotes []change.Amount
	symbol    string
	money     change.Inventory
	products  []models.Product
	session   Session

	journal db.SalesJournal
	metrics *metrics.Machine
	log     pkg.Logger
	now     func() time.Time
}

func NewMachineService(cfg MachineConfig, journal db.SalesJournal, m *metrics.Machine, log pkg.Logger) (MachineService, error) {
	if err := change.ValidateDenominations(cfg.CoinValues, cfg.BanknoteValues); err != nil {
		return nil, err
	}
	symbol := cfg.CurrencySymbol
	if symbol == "" {
		symbol = change.DefaultSymbol
	}
	if m == nil {
		m = metrics.New("vending", nil)
	}
	if journal == nil {
		journal = db.NewMemorySalesJournal()
	}
	if log == nil {
		log = pkg.NewZapLogger(nil)
	}

	products := make([]models.Product, len(cfg.Products))
	copy(products, cfg.Products)

	return &machineService{
		coins:     cfg.CoinValues,
		banknotes: cfg.BanknoteValues,
		symbol:    symbol,
		money:     cfg.InitialMoney.Clone(),
		products:  products,
		journal:   journal,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *machineService) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.productsLocked()
}

func (s *machineService) productsLocked() []models.Product {
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *machineService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Session:  s.sessionLocked(),
		Products: s.productsLocked(),
	}
}

func (s *machineService) sessionLocked() Session {
	return Session{
		Inserted: s.session.Inserted,
		Escrow:   change.Breakdown{}.Merge(s.session.Escrow),
	}
}

func (s *machineService) Inventory() change.Inventory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.money.Clone()
}

func (s *machineService) Insert(_ context.Context, value change.Amount) (Session, error) {
	d, ok := change.Lookup(value, s.coins, s.banknotes)
	if !ok {
		return Session{}, fmt.Errorf("%w: %s%s", ErrUnknownDenomination, value, s.symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Escrow = s.session.Escrow.Merge(change.Single(d))
	s.session.Inserted += value
	s.metrics.Inserted.WithLabelValues(string(d.Category)).Inc()

	s.log.Info("Money inserted",
		zap.String("value", value.String()),
		zap.String("category", string(d.Category)),
		zap.String("inserted", s.session.Inserted.String()))
	return s.sessionLocked(), nil
}

func (s *machineService) Purchase(ctx context.Context, productID int) (PurchaseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(productID)
	if idx < 0 {
		s.metrics.Purchases.WithLabelValues("not_found").Inc()
		return PurchaseResult{}, fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	product := s.products[idx]
	if product.Stock <= 0 {
		s.metrics.Purchases.WithLabelValues("out_of_stock").Inc()
		return PurchaseResult{}, fmt.Errorf("%w: %s", ErrOutOfStock, product.Name)
	}
	if s.session.Inserted < product.Price {
		s.metrics.Purchases.WithLabelValues("insufficient_funds").Inc()
		return PurchaseResult{}, fmt.Errorf("%w: need %s%s more", ErrInsufficientFunds, product.Price-s.session.Inserted, s.symbol)
	}

	due := s.session.Inserted - product.Price
	payout, err := change.Calculate(due, s.money, s.coins, s.banknotes)
	if err != nil {
		s.metrics.Purchases.WithLabelValues("change_unavailable").Inc()
		s.log.Warn("cannot make change",
			zap.Int("productID", productID),
			zap.String("change", due.String()),
			zap.Error(err))
		return PurchaseResult{}, err
	}

	// Inserted money goes into the cash box before the change leaves it.
	money, err := s.money.Credit(s.session.Escrow)
	if err == nil {
		money, err = money.Apply(payout)
	}
	if err != nil {
		s.log.Error("failed to apply change to inventory", zap.Int("productID", productID), zap.Error(err))
		return PurchaseResult{}, err
	}

	changeText := change.Format(payout, s.symbol)
	sale := models.Sale{
		ID:          uuid.New(),
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Inserted:    s.session.Inserted,
		Change:      payout.Total(),
		ChangeText:  changeText,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.journal.RecordSale(ctx, sale); err != nil {
		s.metrics.Purchases.WithLabelValues("journal_error").Inc()
		s.log.Error("failed to record sale", zap.Int("productID", productID), zap.Error(err))
		return PurchaseResult{}, fmt.Errorf("failed to record sale: %w", err)
	}

	s.money = money
	s.products[idx].Stock--
	s.session = Session{}

	s.metrics.Purchases.WithLabelValues("success").Inc()
	for _, n := range payout.Coins {
		s.metrics.ChangeDispensed.WithLabelValues(string(change.Coin)).Add(float64(n))
	}
	for _, n := range payout.Banknotes {
		s.metrics.ChangeDispensed.WithLabelValues(string(change.Banknote)).Add(float64(n))
	}

	message := fmt.Sprintf("Dispensed %s! Change: %s", product.Name, changeText)
	if payout.IsEmpty() {
		message = fmt.Sprintf("Dispensed %s! Exact amount - no change.", product.Name)
	}

	s.log.Info("Product purchased successfully",
		zap.String("saleID", sale.ID.String()),
		zap.Int("productID", product.ID),
		zap.String("price", product.Price.String()),
		zap.String("change", changeText))

	return PurchaseResult{
		Product:    s.products[idx],
		Paid:       sale.Inserted,
		Change:     payout,
		ChangeText: changeText,
		Message:    message,
	}, nil
}

func (s *machineService) ReturnMoney(_ context.Context) (change.Breakdown, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Inserted == 0 {
		return change.Breakdown{}, ErrNothingInserted
	}
	returned := s.session.Escrow
	s.session = Session{}
	s.metrics.Refunds.Inc()

	s.log.Info("Money returned", zap.String("amount", returned.Total().String()))
	return returned, nil
}

// PreviewChange runs the calculator against the current inventory without
// touching it.
func (s *machineService) PreviewChange(amount change.Amount) (ChangeQuote, error) {
	s.mu.Lock()
	money := s.money.Clone()
	s.mu.Unlock()

	b, err := change.Calculate(amount, money, s.coins, s.banknotes)
	if err != nil {
		return ChangeQuote{}, err
	}
	return ChangeQuote{
		Amount:    amount,
		Breakdown: b,
		Text:      change.Format(b, s.symbol),
	}, nil
}

func (s *machineService) RestockProduct(_ context.Context, productID, quantity int) (models.Product, error) {
	if quantity <= 0 {
		return models.Product{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(productID)
	if idx < 0 {
		return models.Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, productID)
	}
	if quantity > MaxStock-s.products[idx].Stock {
		return models.Product{}, fmt.Errorf("%w: stock of %s would exceed %d", ErrInvalidQuantity, s.products[idx].Name, MaxStock)
	}
	s.products[idx].Stock += quantity

	s.log.Info("Product restocked",
		zap.Int("productID", productID),
		zap.Int("quantity", quantity),
		zap.Int("stock", s.products[idx].Stock))
	return s.products[idx], nil
}

func (s *machineService) RestockMoney(_ context.Context, units change.Breakdown) (change.Inventory, error) {
	if units.IsEmpty() {
		return change.Inventory{}, ErrInvalidQuantity
	}
	if err := s.checkUnits(units.Coins, s.coins, change.Coin); err != nil {
		return change.Inventory{}, err
	}
	if err := s.checkUnits(units.Banknotes, s.banknotes, change.Banknote); err != nil {
		return change.Inventory{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	money, err := s.money.Credit(units)
	if err != nil {
		return change.Inventory{}, fmt.Errorf("%w: %w", ErrInvalidQuantity, err)
	}
	s.money = money
	s.log.Info("Money restocked",
		zap.String("added", units.Total().String()),
		zap.String("total", s.money.Total().String()))
	return s.money.Clone(), nil
}

func (s *machineService) checkUnits(units change.Counts, valid []change.Amount, cat change.Category) error {
	for _, v := range units.Descending() {
		if units[v] <= 0 {
			return fmt.Errorf("%w: %s %s", ErrInvalidQuantity, cat, v)
		}
		if !slices.Contains(valid, v) {
			return fmt.Errorf("%w: %s %s%s", ErrUnknownDenomination, cat, v, s.symbol)
		}
	}
	return nil
}

func (s *machineService) Sales(ctx context.Context, limit int) ([]models.Sale, error) {
	sales, err := s.journal.ListSales(ctx, limit)
	if err != nil {
		s.log.Error("failed to list sales", zap.Error(err))
		return nil, err
	}
	return sales, nil
}

func (s *machineService) productIndex(id int) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}
