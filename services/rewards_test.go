package services

import (
	"testing"

	"gorm.io/datatypes"

	"codecall-platform/models"
)

func TestSplitReward(t *testing.T) {
	cases := []struct {
		pool float64
		want RewardBreakdown
	}{
		{1000, RewardBreakdown{Feature: 500, Optimization: 100, Judging: 200, Bugs: 200}},
		{0, RewardBreakdown{}},
		// Components round independently; the sum may drift from the pool.
		{1, RewardBreakdown{Feature: 1, Optimization: 0, Judging: 0, Bugs: 0}},
		{999, RewardBreakdown{Feature: 500, Optimization: 100, Judging: 200, Bugs: 200}},
		{-100, RewardBreakdown{Feature: -50, Optimization: -10, Judging: -20, Bugs: -20}},
	}
	for _, tc := range cases {
		if got := SplitReward(tc.pool); got != tc.want {
			t.Errorf("SplitReward(%v) = %+v, want %+v", tc.pool, got, tc.want)
		}
	}
}

func TestSplitTrainingPoints(t *testing.T) {
	got := SplitTrainingPoints(400)
	want := RewardBreakdown{Feature: 20, Optimization: 40, Judging: 60, Bugs: 80}
	if got != want {
		t.Errorf("SplitTrainingPoints(400) = %+v, want %+v", got, want)
	}
}

func TestTrainingTaskPercent(t *testing.T) {
	cases := []struct {
		taskID int
		pct    float64
		ok     bool
	}{
		{1, 0.05, true},
		{2, 0.10, true},
		// Tasks 3 and 4 appear in the display table but are not awardable.
		{3, 0, false},
		{4, 0, false},
		{0, 0, false},
		{-1, 0, false},
	}
	for _, tc := range cases {
		pct, ok := TrainingTaskPercent(tc.taskID)
		if pct != tc.pct || ok != tc.ok {
			t.Errorf("TrainingTaskPercent(%d) = (%v, %v), want (%v, %v)", tc.taskID, pct, ok, tc.pct, tc.ok)
		}
	}
}

func TestPayoutFor(t *testing.T) {
	comp := &models.Competition{Reward: 1000}

	cases := []struct {
		submissionType models.SubmissionType
		want           float64
	}{
		{models.SubmissionTypeFeature, 500},
		{models.SubmissionTypeOptimization, 100},
		{models.SubmissionTypeBug, 200},
		{models.SubmissionType("Unknown"), 0},
	}
	for _, tc := range cases {
		if got := PayoutFor(comp, tc.submissionType); got != tc.want {
			t.Errorf("PayoutFor(%q) = %v, want %v", tc.submissionType, got, tc.want)
		}
	}
}

func TestPayoutForCustomDistribution(t *testing.T) {
	comp := &models.Competition{
		Reward:             1000,
		RewardDistribution: datatypes.JSON(`{"feature":40,"optimization":15,"judging":25,"bugs":20}`),
	}
	if got := PayoutFor(comp, models.SubmissionTypeFeature); got != 400 {
		t.Errorf("PayoutFor(Feature) = %v, want 400", got)
	}
	if got := PayoutFor(comp, models.SubmissionTypeOptimization); got != 150 {
		t.Errorf("PayoutFor(Optimization) = %v, want 150", got)
	}
}

func TestDistributionForFallsBackOnBadJSON(t *testing.T) {
	comp := &models.Competition{
		Reward:             1000,
		RewardDistribution: datatypes.JSON(`not json`),
	}
	if got := DistributionFor(comp); got != DefaultRewardDistribution {
		t.Errorf("DistributionFor = %+v, want default table", got)
	}
}

func TestAmountsFor(t *testing.T) {
	withOverride := &models.Competition{
		Reward:  1000,
		Rewards: datatypes.JSON(`{"feature":700,"bug":100,"optimization":50,"security":150}`),
	}
	got := AmountsFor(withOverride)
	want := RewardAmounts{Feature: 700, Bug: 100, Optimization: 50, Security: 150}
	if got != want {
		t.Errorf("AmountsFor(override) = %+v, want %+v", got, want)
	}

	withoutOverride := &models.Competition{Reward: 1000}
	got = AmountsFor(withoutOverride)
	want = RewardAmounts{Feature: 500, Bug: 200, Optimization: 100, Security: 0}
	if got != want {
		t.Errorf("AmountsFor(fallback) = %+v, want %+v", got, want)
	}
}
