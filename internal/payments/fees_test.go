package payments

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/models"
)

func testCalculator() *Calculator {
	return NewCalculator(config.Defaults().Payments)
}

func TestComputeFee(t *testing.T) {
	calc := testCalculator()
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name     string
		taskType models.TaskType
		wantFee  string
		wantNet  string
	}{
		{"platform funded has no fee", models.TaskTypePlatformFunded, "0", "100"},
		{"peer to peer takes seven percent", models.TaskTypePeerToPeer, "7", "93"},
		{"corporate takes fifteen percent", models.TaskTypeCorporateSponsored, "15", "85"},
		{"unknown type uses default rate", models.TaskType("mystery"), "7", "93"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.ComputeFee(amount, tt.taskType)
			if got.Policy != PolicyTaskType {
				t.Errorf("Policy = %s, want %s", got.Policy, PolicyTaskType)
			}
			if !got.PlatformFee.Equal(decimal.RequireFromString(tt.wantFee)) {
				t.Errorf("PlatformFee = %s, want %s", got.PlatformFee, tt.wantFee)
			}
			if !got.NetAmount.Equal(decimal.RequireFromString(tt.wantNet)) {
				t.Errorf("NetAmount = %s, want %s", got.NetAmount, tt.wantNet)
			}
		})
	}
}

func TestComputeTierFee(t *testing.T) {
	calc := testCalculator()
	amount := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		tier    models.SubscriptionTier
		wantFee string
	}{
		{"free tier", models.TierFree, "10"},
		{"pro tier", models.TierPro, "7"},
		{"premium tier", models.TierPremium, "5"},
		{"unknown tier priced as free", models.SubscriptionTier("platinum"), "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.ComputeTierFee(amount, tt.tier)
			if got.Policy != PolicySubscriptionTier {
				t.Errorf("Policy = %s, want %s", got.Policy, PolicySubscriptionTier)
			}
			if !got.PlatformFee.Equal(decimal.RequireFromString(tt.wantFee)) {
				t.Errorf("PlatformFee = %s, want %s", got.PlatformFee, tt.wantFee)
			}
		})
	}
}

func TestBreakdownRoundingAndClamps(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		rate    string
		wantFee string
		wantNet string
	}{
		{"rounds to cents", "33.33", "7", "2.33", "31.00"},
		{"negative rate clamps fee to zero", "100", "-5", "0", "100"},
		{"rate above hundred clamps fee to amount", "100", "150", "100", "0"},
		{"zero amount", "0", "7", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := breakdown(PolicyTaskType, decimal.RequireFromString(tt.amount), decimal.RequireFromString(tt.rate))
			if !got.PlatformFee.Equal(decimal.RequireFromString(tt.wantFee)) {
				t.Errorf("PlatformFee = %s, want %s", got.PlatformFee, tt.wantFee)
			}
			if !got.NetAmount.Equal(decimal.RequireFromString(tt.wantNet)) {
				t.Errorf("NetAmount = %s, want %s", got.NetAmount, tt.wantNet)
			}
		})
	}
}

func TestFeePlusNetEqualsGross(t *testing.T) {
	calc := testCalculator()
	for _, amountStr := range []string{"0.01", "1", "19.99", "100", "12345.67"} {
		amount := decimal.RequireFromString(amountStr)
		for _, taskType := range []models.TaskType{
			models.TaskTypePlatformFunded,
			models.TaskTypePeerToPeer,
			models.TaskTypeCorporateSponsored,
		} {
			b := calc.ComputeFee(amount, taskType)
			if sum := b.PlatformFee.Add(b.NetAmount); !sum.Equal(amount) {
				t.Errorf("fee %s + net %s = %s, want %s (%s)", b.PlatformFee, b.NetAmount, sum, amount, taskType)
			}
		}
	}
}
