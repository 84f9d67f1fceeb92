// Package clients contains exchange API clients.
package clients

import (
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2"
)

// NewBinanceClient creates a go-binance SDK client with a bounded HTTP
// timeout. Used for public market data endpoints, so the keys may be empty.
func NewBinanceClient(apiKey, apiSecret string, timeout time.Duration) *binance.Client {
	client := binance.NewClient(apiKey, apiSecret)
	client.HTTPClient = &http.Client{Timeout: timeout}
	return client
}
