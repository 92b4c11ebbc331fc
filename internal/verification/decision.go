package verification

import (
	"github.com/shopspring/decimal"

	"github.com/taskhive/backend/internal/config"
	"github.com/taskhive/backend/internal/models"
)

// Policy holds every decision-engine threshold. Policies come from
// configuration so operators can tune classification without code changes.
type Policy struct {
	GPSAccuracyMin        int
	PhotoQualityMin       int
	TimeComplianceMin     int
	FraudAutoApproveMax   int
	FraudRejectAbove      int
	PlatformFundedAutoCap decimal.Decimal
	PeerToPeerReviewAbove decimal.Decimal
	CorporateReviewAbove  decimal.Decimal
	CorporateQualityFloor int
}

// PolicyFromConfig builds a Policy from the loaded configuration section.
func PolicyFromConfig(cfg config.VerificationConfig) Policy {
	return Policy{
		GPSAccuracyMin:        cfg.GPSAccuracyMin,
		PhotoQualityMin:       cfg.PhotoQualityMin,
		TimeComplianceMin:     cfg.TimeComplianceMin,
		FraudAutoApproveMax:   cfg.FraudAutoApproveMax,
		FraudRejectAbove:      cfg.FraudRejectAbove,
		PlatformFundedAutoCap: decimal.NewFromFloat(cfg.PlatformFundedAutoCap),
		PeerToPeerReviewAbove: decimal.NewFromFloat(cfg.PeerToPeerReviewAbove),
		CorporateReviewAbove:  decimal.NewFromFloat(cfg.CorporateReviewAbove),
		CorporateQualityFloor: cfg.CorporateQualityFloor,
	}
}

// DecisionInput is everything the decision engine looks at for one
// submission. Criteria carries per-task threshold overrides; zero fields
// fall back to the policy defaults.
type DecisionInput struct {
	AutoVerificationScore int
	FraudScore            int
	QualityScore          int
	TaskType              models.TaskType
	EarningPotential      decimal.Decimal
	Criteria              models.AutoApprovalCriteria
}

// Rule is one predicate → outcome pair of the decision table.
type Rule struct {
	Name    string
	Applies func(DecisionInput) bool
	Outcome models.VerificationStatus
}

// Decide classifies a submission. It is a pure function: the ordered rule
// table is rebuilt from the policy on every call and the first matching rule
// wins. The fallback is always manual review.
func Decide(in DecisionInput, pol Policy) models.VerificationStatus {
	for _, rule := range BuildRules(pol) {
		if rule.Applies(in) {
			return rule.Outcome
		}
	}
	return models.VerificationStatusManualReview
}

// DecideWithRule is Decide plus the name of the rule that fired, for audit
// logs.
func DecideWithRule(in DecisionInput, pol Policy) (models.VerificationStatus, string) {
	for _, rule := range BuildRules(pol) {
		if rule.Applies(in) {
			return rule.Outcome, rule.Name
		}
	}
	return models.VerificationStatusManualReview, "fallback_manual_review"
}

// BuildRules materializes the ordered decision table for a policy.
func BuildRules(pol Policy) []Rule {
	return []Rule{
		{
			// Hard gate, independent of everything else.
			Name: "fraud_hard_reject",
			Applies: func(in DecisionInput) bool {
				return in.FraudScore > pol.FraudRejectAbove
			},
			Outcome: models.VerificationStatusRejected,
		},
		{
			Name: "platform_funded_low_value_auto",
			Applies: func(in DecisionInput) bool {
				return in.TaskType == models.TaskTypePlatformFunded &&
					in.EarningPotential.LessThanOrEqual(pol.PlatformFundedAutoCap) &&
					meetsAutoApproval(in, pol)
			},
			Outcome: models.VerificationStatusAutoVerified,
		},
		{
			Name: "corporate_high_value_or_low_quality_review",
			Applies: func(in DecisionInput) bool {
				return in.TaskType == models.TaskTypeCorporateSponsored &&
					(in.EarningPotential.GreaterThan(pol.CorporateReviewAbove) ||
						in.QualityScore < pol.CorporateQualityFloor)
			},
			Outcome: models.VerificationStatusManualReview,
		},
		{
			Name: "corporate_auto",
			Applies: func(in DecisionInput) bool {
				return in.TaskType == models.TaskTypeCorporateSponsored && meetsAutoApproval(in, pol)
			},
			Outcome: models.VerificationStatusAutoVerified,
		},
		{
			Name: "corporate_review",
			Applies: func(in DecisionInput) bool {
				return in.TaskType == models.TaskTypeCorporateSponsored
			},
			Outcome: models.VerificationStatusManualReview,
		},
		{
			// Value exceeds the peer-to-peer ceiling regardless of scores.
			Name: "peer_high_value_review",
			Applies: func(in DecisionInput) bool {
				return in.TaskType == models.TaskTypePeerToPeer &&
					in.EarningPotential.GreaterThan(pol.PeerToPeerReviewAbove)
			},
			Outcome: models.VerificationStatusManualReview,
		},
		{
			Name: "peer_auto",
			Applies: func(in DecisionInput) bool {
				return in.TaskType == models.TaskTypePeerToPeer && meetsAutoApproval(in, pol)
			},
			Outcome: models.VerificationStatusAutoVerified,
		},
		{
			Name: "peer_needs_more_proof",
			Applies: func(in DecisionInput) bool {
				return in.TaskType == models.TaskTypePeerToPeer
			},
			Outcome: models.VerificationStatusRequiresProof,
		},
	}
}

// meetsAutoApproval checks the composite auto-approval gate. Per-task
// criteria override policy defaults when set.
func meetsAutoApproval(in DecisionInput, pol Policy) bool {
	gpsMin := orDefault(in.Criteria.GPSAccuracyMin, pol.GPSAccuracyMin)
	photoMin := orDefault(in.Criteria.PhotoQualityMin, pol.PhotoQualityMin)
	timeMin := orDefault(in.Criteria.TimeComplianceMin, pol.TimeComplianceMin)
	fraudMax := orDefault(in.Criteria.FraudScoreMax, pol.FraudAutoApproveMax)

	return in.AutoVerificationScore >= gpsMin &&
		in.QualityScore >= photoMin &&
		in.AutoVerificationScore >= timeMin &&
		in.FraudScore <= fraudMax
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
