// Package payments implements fee and payout calculation. Two distinct,
// deliberately coexisting fee schedules are exposed as named policies: the
// task-type schedule used by the verification pipeline and the
// subscription-tier schedule used for community tasks. Callers choose a
// policy explicitly and the choice is recorded in transaction metadata.
package payments

import (
	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/models"
)

// Policy names recorded in Transaction metadata.
const (
	PolicyTaskType         = "task_type"
	PolicySubscriptionTier = "subscription_tier"
)

// FeeBreakdown is the result of pricing one gross amount.
type FeeBreakdown struct {
	Policy      string
	RatePercent decimal.Decimal
	PlatformFee decimal.Decimal
	NetAmount   decimal.Decimal
}

// Calculator prices payouts from configured fee rates. Pure: no I/O, no
// state beyond the rates it was constructed with.
type Calculator struct {
	taskTypeRates map[models.TaskType]decimal.Decimal
	defaultRate   decimal.Decimal
	tierRates     map[models.SubscriptionTier]decimal.Decimal
}

// NewCalculator builds a Calculator from the payments config section.
func NewCalculator(cfg config.PaymentsConfig) *Calculator {
	return &Calculator{
		taskTypeRates: map[models.TaskType]decimal.Decimal{
			models.TaskTypePlatformFunded:     decimal.NewFromFloat(cfg.TaskTypeFees.PlatformFunded),
			models.TaskTypePeerToPeer:         decimal.NewFromFloat(cfg.TaskTypeFees.PeerToPeer),
			models.TaskTypeCorporateSponsored: decimal.NewFromFloat(cfg.TaskTypeFees.CorporateSponsored),
		},
		defaultRate: decimal.NewFromFloat(cfg.TaskTypeFees.Default),
		tierRates: map[models.SubscriptionTier]decimal.Decimal{
			models.TierFree:    decimal.NewFromFloat(cfg.TierFees.Free),
			models.TierPro:     decimal.NewFromFloat(cfg.TierFees.Pro),
			models.TierPremium: decimal.NewFromFloat(cfg.TierFees.Premium),
		},
	}
}

// ComputeFee prices amount under the task-type schedule. Unknown task types
// fall back to the default rate.
func (c *Calculator) ComputeFee(amount decimal.Decimal, taskType models.TaskType) FeeBreakdown {
	rate, ok := c.taskTypeRates[taskType]
	if !ok {
		rate = c.defaultRate
	}
	return breakdown(PolicyTaskType, amount, rate)
}

// ComputeTierFee prices amount under the subscription-tier schedule.
// Unknown tiers are priced as free tier.
func (c *Calculator) ComputeTierFee(amount decimal.Decimal, tier models.SubscriptionTier) FeeBreakdown {
	rate, ok := c.tierRates[tier]
	if !ok {
		rate = c.tierRates[models.TierFree]
	}
	return breakdown(PolicySubscriptionTier, amount, rate)
}

// breakdown applies rate (a percentage) to amount, rounding to two decimal
// places. The fee is clamped so it is never negative and never exceeds the
// gross amount.
func breakdown(policy string, amount, rate decimal.Decimal) FeeBreakdown {
	fee := amount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	if fee.IsNegative() {
		fee = decimal.Zero
	}
	if fee.GreaterThan(amount) {
		fee = amount
	}
	return FeeBreakdown{
		Policy:      policy,
		RatePercent: rate,
		PlatformFee: fee,
		NetAmount:   amount.Sub(fee).Round(2),
	}
}
