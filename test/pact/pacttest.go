//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "marketplace-api"
	ConsumerName = "storefront-web"

	StateCartBaseline = "cart baseline"
	StateCartReady    = "cart with product prod-pact-1 exists for buyer pact-buyer"
	StateOrderExists  = "order ord-pact-301 exists for buyer pact-buyer"
	StateOrderMissing = "no order with id ord-missing"
)

const (
	BuyerID        = "pact-buyer"
	SupplierID     = "pact-supplier"
	ExistingOrder  = "ord-pact-301"
	MissingOrder   = "ord-missing"
	ExampleProduct = "prod-pact-1"
)

const (
	exampleProductName = "Pact Bolt Pack"
	exampleOrderNumber = "ORD-20260901120000-PACT01"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCartItemPayload provides stable test data for add-to-cart interactions.
func ExampleCartItemPayload() map[string]any {
	return map[string]any{
		"productId": ExampleProduct,
		"quantity":  2,
		"unitPrice": 10.00,
	}
}

// ExampleOrderNumber returns the order number seeded for provider states.
func ExampleOrderNumber() string {
	return exampleOrderNumber
}

// ExampleProductName returns the catalog name seeded for provider states.
func ExampleProductName() string {
	return exampleProductName
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
