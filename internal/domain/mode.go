package domain

import "fmt"

// Mode balance aggregation strategy.
type Mode string

const (
	// ModeMarginNetAsset converts the exchange-reported margin net asset figure.
	ModeMarginNetAsset Mode = "margin_net_asset"
	// ModeMarginAssets enumerates and converts every margin asset position.
	ModeMarginAssets Mode = "margin_assets"
	// ModeMarginAndSpot combines the margin net asset figure with spot positions.
	ModeMarginAndSpot Mode = "margin_and_spot"
)

// String returns the string representation.
func (m Mode) String() string {
	return string(m)
}

// IsValid checks if the Mode value is valid.
func (m Mode) IsValid() bool {
	return m == ModeMarginNetAsset || m == ModeMarginAssets || m == ModeMarginAndSpot
}

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown aggregation mode %q", s)
	}
	return m, nil
}
