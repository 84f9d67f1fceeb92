package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{input: "margin_net_asset", want: ModeMarginNetAsset},
		{input: "margin_assets", want: ModeMarginAssets},
		{input: "margin_and_spot", want: ModeMarginAndSpot},
		{input: "", wantErr: true},
		{input: "spot", wantErr: true},
		{input: "MARGIN_ASSETS", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}
