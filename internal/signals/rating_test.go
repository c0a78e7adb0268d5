package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/themescreen/internal/contracts"
)

func TestRatingFor(t *testing.T) {
	tests := []struct {
		total int
		en    string
		zh    string
	}{
		{8, "STRONG BUY", "强烈买入"},
		{6, "STRONG BUY", "强烈买入"},
		{5, "BUY", "买入"},
		{4, "BUY", "买入"},
		{3, "LEAN BUY", "偏多"},
		{1, "LEAN BUY", "偏多"},
		{0, "HOLD", "持有"},
		{-1, "HOLD", "持有"},
		{-2, "SELL", "卖出"},
		{-3, "SELL", "卖出"},
		{-4, "STRONG SELL", "强烈卖出"},
		{-8, "STRONG SELL", "强烈卖出"},
		{42, "HOLD", "持有"},
	}

	for _, tt := range tests {
		got := RatingFor(tt.total)
		assert.Equal(t, contracts.Rating{Zh: tt.zh, En: tt.en}, got, "total=%d", tt.total)
	}
}

func TestRatingScale_CoversRangeExactlyOnce(t *testing.T) {
	for total := -8; total <= 8; total++ {
		matches := 0
		for _, band := range RatingScale {
			if total >= band.Min && total <= band.Max {
				matches++
			}
		}
		require.Equal(t, 1, matches, "total=%d", total)
	}
}
