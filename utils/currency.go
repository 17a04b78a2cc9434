package utils

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// ConvertUSDToKES fetches the current USD→KES rate and converts the amount.
// Only the shipping-fee estimate depends on this; order totals never do.
func ConvertUSDToKES(client *resty.Client, rateURL string, amount decimal.Decimal) (decimal.Decimal, error) {
	resp, err := client.R().
		SetHeader("Accept", "application/json").
		Get(rateURL)
	if err != nil {
		return decimal.Zero, fmt.Errorf("exchange rate request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return decimal.Zero, fmt.Errorf("exchange rate request failed with status %d", resp.StatusCode())
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse exchange rate response: %w", err)
	}

	rate, ok := body.Rates["KES"]
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("KES rate not found in response")
	}

	return amount.Mul(decimal.NewFromFloat(rate)).Round(2), nil
}
