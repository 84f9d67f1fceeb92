//go:build integration

package pricer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/tally/internal/clients"
	"github.com/vadiminshakov/tally/internal/domain"
)

// TestBinancePricer_GetPrice_Integration calls the real Binance API.
// To run this test, use: go test -tags=integration -v ./...
func TestBinancePricer_GetPrice_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// ticker prices are public, no credentials needed
	client := clients.NewBinanceClient("", "", 10*time.Second)
	pricer := NewBinancePricer(client)

	t.Run("returns price for BTC/USDT pair", func(t *testing.T) {
		pair := domain.Pair{From: "BTC", To: "USDT"}

		price, err := pricer.GetPrice(context.Background(), pair)
		require.NoError(t, err)
		require.True(t, price.GreaterThan(decimal.Zero), "Expected price > 0 for %s, got %s", pair.String(), price.String())
		t.Logf("Current %s price: %s", pair.String(), price.String())
	})

	t.Run("returns error for invalid trading pair", func(t *testing.T) {
		pair := domain.Pair{From: "INVALID", To: "PAIR"}

		price, err := pricer.GetPrice(context.Background(), pair)

		assert.Error(t, err, "Expected error for invalid pair")
		assert.True(t, price.IsZero(), "Expected zero price for invalid pair, got %s", price.String())
	})
}
