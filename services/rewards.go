package services

import (
	"encoding/json"
	"math"

	"codecall-platform/models"
)

// RewardBreakdown is the per-category view of a competition reward pool.
type RewardBreakdown struct {
	Feature      int64 `json:"feature"`
	Optimization int64 `json:"optimization"`
	Judging      int64 `json:"judging"`
	Bugs         int64 `json:"bugs"`
}

// RewardDistribution holds per-category percentages used for submission
// approval payouts. Stored per competition as JSON; zero value means the
// default table.
type RewardDistribution struct {
	Feature      float64 `json:"feature"`
	Optimization float64 `json:"optimization"`
	Judging      float64 `json:"judging"`
	Bugs         float64 `json:"bugs"`
}

// DefaultRewardDistribution is the fixed 50/10/20/20 percentage table.
var DefaultRewardDistribution = RewardDistribution{
	Feature:      50,
	Optimization: 10,
	Judging:      20,
	Bugs:         20,
}

// RewardAmounts are explicit per-category payout amounts, used by the
// PR-merge settlement when a competition overrides the percentage split.
type RewardAmounts struct {
	Feature      float64 `json:"feature"`
	Bug          float64 `json:"bug"`
	Optimization float64 `json:"optimization"`
	Security     float64 `json:"security"`
}

// SplitReward splits a reward pool by the default percentage table. Each
// component rounds independently (half away from zero); the components are
// not adjusted to make the sum match the pool, so rounding drift of a unit
// or two is expected at some pool values.
func SplitReward(pool float64) RewardBreakdown {
	return RewardBreakdown{
		Feature:      int64(math.Round(pool * 0.5)),
		Optimization: int64(math.Round(pool * 0.1)),
		Judging:      int64(math.Round(pool * 0.2)),
		Bugs:         int64(math.Round(pool * 0.2)),
	}
}

// SplitTrainingPoints is the task-display table for training point pools:
// 5/10/15/20 percent for tasks 1-4. The table intentionally does not sum
// to 100; it mirrors what participants are shown.
func SplitTrainingPoints(pool float64) RewardBreakdown {
	return RewardBreakdown{
		Feature:      int64(math.Round(pool * 0.05)),
		Optimization: int64(math.Round(pool * 0.10)),
		Judging:      int64(math.Round(pool * 0.15)),
		Bugs:         int64(math.Round(pool * 0.20)),
	}
}

// TrainingTaskPercent maps a training task id to its share of the point
// pool. Only tasks 1 and 2 are awardable; 3 and 4 are displayed but the
// award rule table does not cover them yet.
func TrainingTaskPercent(taskID int) (float64, bool) {
	switch taskID {
	case 1:
		return 0.05, true
	case 2:
		return 0.10, true
	default:
		return 0, false
	}
}

// DistributionFor decodes a competition's stored percentage table, falling
// back to the default when the record has none.
func DistributionFor(c *models.Competition) RewardDistribution {
	if len(c.RewardDistribution) == 0 {
		return DefaultRewardDistribution
	}
	var dist RewardDistribution
	if err := json.Unmarshal(c.RewardDistribution, &dist); err != nil {
		return DefaultRewardDistribution
	}
	return dist
}

// PayoutFor computes the payout of an approved submission from the
// competition's reward pool and its percentage table.
func PayoutFor(c *models.Competition, submissionType models.SubmissionType) float64 {
	dist := DistributionFor(c)
	switch submissionType {
	case models.SubmissionTypeFeature:
		return c.Reward * dist.Feature / 100
	case models.SubmissionTypeOptimization:
		return c.Reward * dist.Optimization / 100
	case models.SubmissionTypeBug:
		return c.Reward * dist.Bugs / 100
	default:
		return 0
	}
}

// AmountsFor decodes a competition's explicit per-category amount override,
// falling back to the default split of the reward pool.
func AmountsFor(c *models.Competition) RewardAmounts {
	if len(c.Rewards) > 0 {
		var amounts RewardAmounts
		if err := json.Unmarshal(c.Rewards, &amounts); err == nil {
			return amounts
		}
	}
	split := SplitReward(c.Reward)
	return RewardAmounts{
		Feature:      float64(split.Feature),
		Bug:          float64(split.Bugs),
		Optimization: float64(split.Optimization),
		Security:     0,
	}
}
