package domain

import "github.com/shopspring/decimal"

// AssetBalance single asset position as reported by the exchange.
type AssetBalance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// Total returns free plus locked amount.
func (b AssetBalance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// IsZero reports whether the position holds nothing.
func (b AssetBalance) IsZero() bool {
	return b.Free.IsZero() && b.Locked.IsZero()
}

// MarginAccount margin account state.
// TotalNetAsset is net of borrowed funds and denominated in the reference asset.
type MarginAccount struct {
	TotalNetAsset decimal.Decimal
	Assets        []AssetBalance
}

// SpotAccount spot account state.
type SpotAccount struct {
	Balances []AssetBalance
}
