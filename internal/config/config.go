package config

import (
	"fmt"
	"strconv"
	"strings"

	"vending-machine/internal/change"
	"vending-machine/internal/models"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
)

type Config struct {
	AppEnv           string
	ServerPort       string
	JWTSecret        string
	AdminUsername    string
	AdminPassword    string
	CurrencySymbol   string
	JournalDriver    string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	CoinValues     []change.Amount
	BanknoteValues []change.Amount
	InitialMoney   change.Inventory
	Products       []models.Product
}

// LoadConfig reads the environment (and a .env file when present) once at startup.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	get := func(key, defaultVal string) string {
		if v := strings.TrimSpace(k.String(key)); v != "" {
			return v
		}
		return defaultVal
	}

	cfg := &Config{
		AppEnv:           get("APP_ENV", "development"),
		ServerPort:       get("SERVER_PORT", "8080"),
		JWTSecret:        get("JWT_SECRET", "secret"),
		AdminUsername:    get("ADMIN_USERNAME", "admin"),
		AdminPassword:    get("ADMIN_PASSWORD", "admin"),
		CurrencySymbol:   get("CURRENCY_SYMBOL", change.DefaultSymbol),
		JournalDriver:    strings.ToLower(get("JOURNAL_DRIVER", JournalMemory)),
		DatabaseHost:     get("DATABASE_HOST", "localhost"),
		DatabasePort:     get("DATABASE_PORT", "5432"),
		DatabaseUser:     get("DATABASE_USER", "postgres"),
		DatabasePassword: get("DATABASE_PASSWORD", "password"),
		DatabaseName:     get("DATABASE_NAME", "vending"),
	}

	var err error
	if cfg.CoinValues, err = parseValues(get("COIN_VALUES", "1,5,10")); err != nil {
		return nil, fmt.Errorf("COIN_VALUES: %w", err)
	}
	if cfg.BanknoteValues, err = parseValues(get("BANKNOTE_VALUES", "20,50,100,500,1000")); err != nil {
		return nil, fmt.Errorf("BANKNOTE_VALUES: %w", err)
	}
	if err := change.ValidateDenominations(cfg.CoinValues, cfg.BanknoteValues); err != nil {
		return nil, err
	}

	coins, err := parseCounts(get("INITIAL_COINS", "1:20,5:20,10:30"), cfg.CoinValues)
	if err != nil {
		return nil, fmt.Errorf("INITIAL_COINS: %w", err)
	}
	banknotes, err := parseCounts(get("INITIAL_BANKNOTES", "20:10,50:10,100:5,500:3,1000:2"), cfg.BanknoteValues)
	if err != nil {
		return nil, fmt.Errorf("INITIAL_BANKNOTES: %w", err)
	}
	cfg.InitialMoney = change.Inventory{Coins: coins, Banknotes: banknotes}

	if cfg.Products, err = parseProducts(get("PRODUCTS", defaultProducts)); err != nil {
		return nil, fmt.Errorf("PRODUCTS: %w", err)
	}

	switch cfg.JournalDriver {
	case JournalMemory, JournalPostgres:
	default:
		return nil, fmt.Errorf("JOURNAL_DRIVER: unknown driver %q", cfg.JournalDriver)
	}

	return cfg, nil
}

const defaultProducts = "Water:10:10,Green Tea:20:8,Cola:25:8,Orange Juice:30:6," +
	"Coffee:35:6,Chips:22:10,Chocolate:45:5,Energy Drink:55:4"

// HTTPAddr returns the address the HTTP server binds to.
func (c *Config) HTTPAddr() string {
	return ":" + strings.TrimPrefix(c.ServerPort, ":")
}

// DSN is the lib/pq connection string for the journal database.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DatabaseHost, c.DatabasePort, c.DatabaseUser, c.DatabasePassword, c.DatabaseName)
}

func parseValues(raw string) ([]change.Amount, error) {
	var values []change.Amount
	for _, part := range splitAndTrim(raw, ",") {
		v, err := change.ParseAmount(part)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// parseCounts reads "value:count" pairs. Every configured value gets an entry,
// zero when the pair is absent.
func parseCounts(raw string, valid []change.Amount) (change.Counts, error) {
	counts := make(change.Counts, len(valid))
	for _, v := range valid {
		counts[v] = 0
	}
	for _, pair := range splitAndTrim(raw, ",") {
		value, count, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		v, err := change.ParseAmount(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		if _, known := counts[v]; !known {
			return nil, fmt.Errorf("%w: %s is not configured", change.ErrInvalidDenomination, v)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil || n < 0 || n > change.MaxUnits {
			return nil, fmt.Errorf("invalid count in %q", pair)
		}
		counts[v] = n
	}
	return counts, nil
}

// parseProducts reads "name:price:stock" triples; ids are assigned in order from 1.
func parseProducts(raw string) ([]models.Product, error) {
	var products []models.Product
	for i, item := range splitAndTrim(raw, ",") {
		fields := strings.Split(item, ":")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed product %q", item)
		}
		price, err := change.ParseAmount(strings.TrimSpace(fields[1]))
		if err != nil || price <= 0 {
			return nil, fmt.Errorf("invalid price in %q", item)
		}
		stock, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("invalid stock in %q", item)
		}
		products = append(products, models.Product{
			ID:    i + 1,
			Name:  strings.TrimSpace(fields[0]),
			Price: price,
			Stock: stock,
		})
	}
	return products, nil
}

func splitAndTrim(raw, sep string) []string {
	var out []string
	for _, part := range strings.Split(raw, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
