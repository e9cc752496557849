package service

import (
	"errors"
	"testing"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
)

func ladderFixture() *LevelLadder {
	levels := []model.PlacementLevel{
		{BaseModel: model.BaseModel{ID: 1}, Rank: 1, Name: "A1"},
		{BaseModel: model.BaseModel{ID: 2}, Rank: 2, Name: "A2"},
		{BaseModel: model.BaseModel{ID: 3}, Rank: 3, Name: "B1"},
	}
	questions := map[uint][]model.PlacementQuestion{
		1: {
			{BaseModel: model.BaseModel{ID: 11}, LevelID: 1, CorrectIndex: 0},
			{BaseModel: model.BaseModel{ID: 12}, LevelID: 1, CorrectIndex: 1},
			{BaseModel: model.BaseModel{ID: 13}, LevelID: 1, CorrectIndex: 2},
		},
		2: {
			{BaseModel: model.BaseModel{ID: 21}, LevelID: 2, CorrectIndex: 0},
			{BaseModel: model.BaseModel{ID: 22}, LevelID: 2, CorrectIndex: 0},
		},
		3: {
			{BaseModel: model.BaseModel{ID: 31}, LevelID: 3, CorrectIndex: 0},
		},
	}
	return NewLevelLadder(levels, questions)
}

func TestDecidePromotion_PromotesAboveThreshold(t *testing.T) {
	ladder := ladderFixture()

	// 3 题对 2，正确率 0.67
	decision, err := DecidePromotion(ladder, 1, 2, 3, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Promote {
		t.Fatalf("expected promotion at ratio %.2f", decision.Ratio)
	}
	if decision.NextLevelID != 2 {
		t.Fatalf("expected next level 2, got %d", decision.NextLevelID)
	}
}

func TestDecidePromotion_FinalizesBelowThreshold(t *testing.T) {
	ladder := ladderFixture()

	// 3 题对 1，正确率 0.33
	decision, err := DecidePromotion(ladder, 1, 1, 3, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Promote {
		t.Fatalf("expected finalization at ratio %.2f", decision.Ratio)
	}
	if decision.FinalLevel != 1 {
		t.Fatalf("expected final level 1, got %d", decision.FinalLevel)
	}
}

func TestDecidePromotion_ExactThresholdPromotes(t *testing.T) {
	ladder := ladderFixture()

	// 2 题对 1，正好 0.5
	decision, err := DecidePromotion(ladder, 2, 1, 2, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.Promote {
		t.Fatalf("ratio equal to threshold should promote, got ratio %.2f", decision.Ratio)
	}
}

func TestDecidePromotion_TerminalLevelAlwaysFinalizes(t *testing.T) {
	ladder := ladderFixture()

	decision, err := DecidePromotion(ladder, 3, 1, 1, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Promote {
		t.Fatalf("terminal level must not promote")
	}
	if decision.FinalLevel != 3 || decision.Ratio != 1.0 {
		t.Fatalf("expected final level 3 with ratio 1.0, got %d / %.2f", decision.FinalLevel, decision.Ratio)
	}
}

func TestDecidePromotion_ZeroQuestionsFinalizes(t *testing.T) {
	ladder := ladderFixture()

	decision, err := DecidePromotion(ladder, 1, 0, 0, 0.6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Promote || decision.Ratio != 0 {
		t.Fatalf("empty level must finalize with ratio 0, got %+v", decision)
	}
}

func TestDecidePromotion_UnknownLevel(t *testing.T) {
	ladder := ladderFixture()

	if _, err := DecidePromotion(ladder, 99, 0, 0, 0.6); !errors.Is(err, util.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}
