// Package balance aggregates exchange account state into a single quote-asset total.
package balance

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/tally/internal/domain"
	"github.com/vadiminshakov/tally/internal/services/pricer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrCredentialsMissing API key or secret key is not configured.
// The web UI matches this message verbatim to point the user at settings.
var ErrCredentialsMissing = errors.New("api key or secret key is not set")

// CredentialProvider supplies the stored API credential pair.
// Absent credentials surface as zero-value fields, not as an error.
type CredentialProvider interface {
	Credentials() (domain.Credentials, error)
}

// AccountClient fetches signed account state from the exchange.
type AccountClient interface {
	MarginAccount(ctx context.Context, creds domain.Credentials) (domain.MarginAccount, error)
	SpotAccount(ctx context.Context, creds domain.Credentials) (domain.SpotAccount, error)
}

// Service computes the total account value in the quote asset.
type Service struct {
	mode           domain.Mode
	quoteAsset     string
	referenceAsset string
	credentials    CredentialProvider
	account        AccountClient
	pricer         pricer.Pricer
	l              *zap.Logger
}

// NewService creates a Service. referenceAsset denominates the margin
// net-asset figure reported by the exchange (usually BTC).
func NewService(l *zap.Logger, mode domain.Mode, quoteAsset, referenceAsset string,
	credentials CredentialProvider, account AccountClient, pricer pricer.Pricer) *Service {
	return &Service{
		mode:           mode,
		quoteAsset:     quoteAsset,
		referenceAsset: referenceAsset,
		credentials:    credentials,
		account:        account,
		pricer:         pricer,
		l:              l,
	}
}

// TotalBalance performs one aggregation: load credentials, fetch account
// state per the configured mode, convert every position into the quote asset
// and sum. Any failure aborts the whole computation, no partial total is
// ever returned. Single attempt, no retries.
func (s *Service) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	creds, err := s.credentials.Credentials()
	if err != nil {
		return decimal.Decimal{}, errors.Wrap(err, "load credentials")
	}
	if !creds.IsComplete() {
		return decimal.Decimal{}, ErrCredentialsMissing
	}

	var total decimal.Decimal
	switch s.mode {
	case domain.ModeMarginNetAsset:
		margin, err := s.account.MarginAccount(ctx, creds)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total, err = s.convertReference(ctx, margin.TotalNetAsset)
		if err != nil {
			return decimal.Decimal{}, err
		}
	case domain.ModeMarginAssets:
		margin, err := s.account.MarginAccount(ctx, creds)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total, err = s.convertAssets(ctx, margin.Assets)
		if err != nil {
			return decimal.Decimal{}, err
		}
	case domain.ModeMarginAndSpot:
		margin, err := s.account.MarginAccount(ctx, creds)
		if err != nil {
			return decimal.Decimal{}, err
		}
		spot, err := s.account.SpotAccount(ctx, creds)
		if err != nil {
			return decimal.Decimal{}, err
		}
		marginTotal, err := s.convertReference(ctx, margin.TotalNetAsset)
		if err != nil {
			return decimal.Decimal{}, err
		}
		spotTotal, err := s.convertAssets(ctx, spot.Balances)
		if err != nil {
			return decimal.Decimal{}, err
		}
		total = marginTotal.Add(spotTotal)
	default:
		return decimal.Decimal{}, errors.Errorf("unsupported aggregation mode %q", s.mode)
	}

	s.l.Info("computed total balance",
		zap.String("mode", s.mode.String()),
		zap.String("quote", s.quoteAsset),
		zap.String("total", total.String()))

	return total, nil
}

// convertReference converts a reference-asset amount into the quote asset.
// Zero amounts and quote-denominated figures need no price fetch.
func (s *Service) convertReference(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsZero() || s.referenceAsset == s.quoteAsset {
		return amount, nil
	}

	pair := domain.Pair{From: s.referenceAsset, To: s.quoteAsset}
	price, err := s.pricer.GetPrice(ctx, pair)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "get price for %s", pair.String())
	}

	return amount.Mul(price), nil
}

// convertAssets converts every non-empty position into the quote asset and
// sums. Price lookups are independent and fan out concurrently; the first
// failure cancels the rest and aborts the sum. Quote-asset positions count
// at face value, empty positions are skipped entirely.
func (s *Service) convertAssets(ctx context.Context, balances []domain.AssetBalance) (decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(balances))

	g, ctx := errgroup.WithContext(ctx)
	for i, b := range balances {
		if b.IsZero() {
			continue
		}
		if b.Asset == s.quoteAsset {
			values[i] = b.Total()
			continue
		}

		g.Go(func() error {
			pair := domain.Pair{From: b.Asset, To: s.quoteAsset}
			price, err := s.pricer.GetPrice(ctx, pair)
			if err != nil {
				return errors.Wrapf(err, "get price for %s", pair.String())
			}
			values[i] = b.Total().Mul(price)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return decimal.Decimal{}, err
	}

	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total, nil
}
