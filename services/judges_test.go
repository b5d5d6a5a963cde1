package services

import (
	"testing"

	"codecall-platform/models"
)

func TestSelectLeadJudge(t *testing.T) {
	judges := []models.User{
		{ID: "a", Username: "alpha", XP: 10},
		{ID: "b", Username: "bravo", XP: 50},
		{ID: "c", Username: "charlie", XP: 30},
	}
	lead := SelectLeadJudge(judges)
	if lead == nil || lead.ID != "b" {
		t.Fatalf("SelectLeadJudge = %+v, want bravo", lead)
	}
}

// Ties resolve to the judge that joined first; the slice is always passed
// in insertion order.
func TestSelectLeadJudgeTieBreaksByInsertionOrder(t *testing.T) {
	judges := []models.User{
		{ID: "a", Username: "alpha", XP: 40},
		{ID: "b", Username: "bravo", XP: 40},
	}
	lead := SelectLeadJudge(judges)
	if lead == nil || lead.ID != "a" {
		t.Fatalf("SelectLeadJudge = %+v, want alpha on tie", lead)
	}
}

// The lead judge is a view over the current judge set: when the top-XP
// judge drops, recomputation over the remaining set elects the runner-up.
func TestSelectLeadJudgeRecomputesAfterRemoval(t *testing.T) {
	judges := []models.User{
		{ID: "a", Username: "alpha", XP: 10},
		{ID: "b", Username: "bravo", XP: 50},
		{ID: "c", Username: "charlie", XP: 30},
	}
	if lead := SelectLeadJudge(judges); lead.ID != "b" {
		t.Fatalf("initial lead = %s, want b", lead.ID)
	}

	// bravo's XP collapses; a fresh pass elects charlie.
	judges[1].XP = 5
	if lead := SelectLeadJudge(judges); lead.ID != "c" {
		t.Fatalf("recomputed lead = %s, want c", lead.ID)
	}
}

func TestSelectLeadJudgeEmpty(t *testing.T) {
	if lead := SelectLeadJudge(nil); lead != nil {
		t.Fatalf("SelectLeadJudge(nil) = %+v, want nil", lead)
	}
}

// Approvals with a PR number settle through the (competition, PR) dedupe
// key and a repeat is rejected; approvals without one append unconditionally
// and a repeat pays again. Both halves are intended behavior.
func TestApprovalDeduped(t *testing.T) {
	cases := []struct {
		prNumber int
		want     bool
	}{
		{42, true},
		{1, true},
		{0, false},
		{-7, false},
	}
	for _, tc := range cases {
		if got := ApprovalDeduped(tc.prNumber); got != tc.want {
			t.Errorf("ApprovalDeduped(%d) = %v, want %v", tc.prNumber, got, tc.want)
		}
	}
}

// A repeated approval without a PR number is not idempotent: each call
// settles the full category payout, so two approvals cost the pool twice.
func TestRepeatedUndedupedApprovalPaysAgain(t *testing.T) {
	comp := &models.Competition{Reward: 1000}

	if ApprovalDeduped(0) {
		t.Fatal("approval without a PR number must not be deduped")
	}

	var settled float64
	for i := 0; i < 2; i++ {
		settled += PayoutFor(comp, models.SubmissionTypeFeature)
	}
	if settled != 1000 {
		t.Errorf("two undeduped Feature approvals settled %v, want 1000 (500 each)", settled)
	}
}
