package signals

import "github.com/wonny/themescreen/internal/contracts"

// RatingBand maps an inclusive total range to a label
type RatingBand struct {
	Min, Max int
	contracts.Rating
}

// RatingScale covers every total in [-8, 8] exactly once
var RatingScale = []RatingBand{
	{Min: 6, Max: 8, Rating: contracts.Rating{Zh: "强烈买入", En: "STRONG BUY"}},
	{Min: 4, Max: 5, Rating: contracts.Rating{Zh: "买入", En: "BUY"}},
	{Min: 1, Max: 3, Rating: contracts.Rating{Zh: "偏多", En: "LEAN BUY"}},
	{Min: -1, Max: 0, Rating: contracts.Rating{Zh: "持有", En: "HOLD"}},
	{Min: -3, Max: -2, Rating: contracts.Rating{Zh: "卖出", En: "SELL"}},
	{Min: -8, Max: -4, Rating: contracts.Rating{Zh: "强烈卖出", En: "STRONG SELL"}},
}

// Hold is returned for totals outside every band
var Hold = contracts.Rating{Zh: "持有", En: "HOLD"}

// RatingFor returns the band label for a signal total
func RatingFor(total int) contracts.Rating {
	for _, band := range RatingScale {
		if total >= band.Min && total <= band.Max {
			return band.Rating
		}
	}
	return Hold
}
