package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	CatalogURL        string
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	// TaxRate is the flat tax fraction applied to the checkout subtotal.
	TaxRate float64
	// ShippingFlat is the flat shipping cost added to every order.
	ShippingFlat float64
	// GuestCartTTL bounds the lifetime of anonymous carts.
	GuestCartTTL time.Duration
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		CatalogURL:        strings.TrimSpace(os.Getenv("CATALOG_URL")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		TaxRate:           0.10,
		ShippingFlat:      0,
		GuestCartTTL:      72 * time.Hour,
	}
	if raw := strings.TrimSpace(os.Getenv("TAX_RATE")); raw != "" {
		rate, err := strconv.ParseFloat(raw, 64)
		if err != nil || rate < 0 || rate >= 1 {
			return Config{}, fmt.Errorf("TAX_RATE must be a fraction in [0,1)")
		}
		cfg.TaxRate = rate
	}
	if raw := strings.TrimSpace(os.Getenv("SHIPPING_FLAT")); raw != "" {
		cost, err := strconv.ParseFloat(raw, 64)
		if err != nil || cost < 0 {
			return Config{}, fmt.Errorf("SHIPPING_FLAT must be a non-negative number")
		}
		cfg.ShippingFlat = cost
	}
	if raw := strings.TrimSpace(os.Getenv("GUEST_CART_TTL_HOURS")); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return Config{}, fmt.Errorf("GUEST_CART_TTL_HOURS must be a positive integer")
		}
		cfg.GuestCartTTL = time.Duration(hours) * time.Hour
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
