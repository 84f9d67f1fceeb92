package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tally/internal/domain"
)

const (
	// DefaultBaseURL production Binance REST endpoint.
	DefaultBaseURL = "https://api.binance.com"

	marginAccountPath = "/sapi/v1/margin/account"
	spotAccountPath   = "/api/v3/account"
	apiKeyHeader      = "X-MBX-APIKEY"
)

var (
	// ErrRequestFailed authenticated endpoint responded with a non-2xx status.
	ErrRequestFailed = errors.New("exchange request failed")
	// ErrMalformedResponse response body does not match the expected shape.
	ErrMalformedResponse = errors.New("malformed exchange response")
)

// AccountClient performs signed GET requests against Binance account endpoints.
// Credentials are passed per call and are never retained.
type AccountClient struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewAccountClient creates an AccountClient. An empty baseURL means production.
func NewAccountClient(baseURL string, timeout time.Duration) *AccountClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &AccountClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// Sign computes the lowercase hex HMAC-SHA256 signature of the query string.
// The secret key is used only as key material and is never transmitted.
func Sign(query, secretKey string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(query))
	return hex.EncodeToString(mac.Sum(nil))
}

type assetBalanceJSON struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type marginAccountJSON struct {
	TotalNetAssetOfBtc *string             `json:"totalNetAssetOfBtc"`
	UserAssets         *[]assetBalanceJSON `json:"userAssets"`
}

type spotAccountJSON struct {
	Balances *[]assetBalanceJSON `json:"balances"`
}

// MarginAccount fetches the margin account state.
func (c *AccountClient) MarginAccount(ctx context.Context, creds domain.Credentials) (domain.MarginAccount, error) {
	body, err := c.signedGet(ctx, marginAccountPath, creds)
	if err != nil {
		return domain.MarginAccount{}, err
	}

	var payload marginAccountJSON
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.MarginAccount{}, errors.Wrapf(ErrMalformedResponse, "margin account payload: %s", body)
	}
	if payload.TotalNetAssetOfBtc == nil || payload.UserAssets == nil {
		return domain.MarginAccount{}, errors.Wrapf(ErrMalformedResponse, "margin account payload: %s", body)
	}

	netAsset, err := decimal.NewFromString(*payload.TotalNetAssetOfBtc)
	if err != nil {
		return domain.MarginAccount{}, errors.Wrapf(ErrMalformedResponse, "margin account payload: %s", body)
	}

	assets, err := toAssetBalances(*payload.UserAssets)
	if err != nil {
		return domain.MarginAccount{}, errors.Wrapf(ErrMalformedResponse, "margin account payload: %s", body)
	}

	return domain.MarginAccount{TotalNetAsset: netAsset, Assets: assets}, nil
}

// SpotAccount fetches the spot account state.
func (c *AccountClient) SpotAccount(ctx context.Context, creds domain.Credentials) (domain.SpotAccount, error) {
	body, err := c.signedGet(ctx, spotAccountPath, creds)
	if err != nil {
		return domain.SpotAccount{}, err
	}

	var payload spotAccountJSON
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.SpotAccount{}, errors.Wrapf(ErrMalformedResponse, "spot account payload: %s", body)
	}
	if payload.Balances == nil {
		return domain.SpotAccount{}, errors.Wrapf(ErrMalformedResponse, "spot account payload: %s", body)
	}

	balances, err := toAssetBalances(*payload.Balances)
	if err != nil {
		return domain.SpotAccount{}, errors.Wrapf(ErrMalformedResponse, "spot account payload: %s", body)
	}

	return domain.SpotAccount{Balances: balances}, nil
}

// signedGet mints a fresh timestamp, signs the query and performs the request.
func (c *AccountClient) signedGet(ctx context.Context, path string, creds domain.Credentials) ([]byte, error) {
	query := fmt.Sprintf("timestamp=%d", c.now().UnixMilli())
	url := fmt.Sprintf("%s%s?%s&signature=%s", c.baseURL, path, query, Sign(query, creds.SecretKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build account request")
	}
	req.Header.Set(apiKeyHeader, creds.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read account response")
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Wrapf(ErrRequestFailed, "GET %s returned status %d", path, resp.StatusCode)
	}

	return body, nil
}

func toAssetBalances(raw []assetBalanceJSON) ([]domain.AssetBalance, error) {
	balances := make([]domain.AssetBalance, 0, len(raw))
	for _, b := range raw {
		free, err := decimal.NewFromString(b.Free)
		if err != nil {
			return nil, err
		}
		locked, err := decimal.NewFromString(b.Locked)
		if err != nil {
			return nil, err
		}
		balances = append(balances, domain.AssetBalance{Asset: b.Asset, Free: free, Locked: locked})
	}
	return balances, nil
}
