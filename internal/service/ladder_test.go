package service

import (
	"errors"
	"testing"

	"lingua_edu_backend/internal/util"
)

func TestLevelLadder_Sequencing(t *testing.T) {
	ladder := ladderFixture()

	first, err := ladder.First()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Name != "A1" {
		t.Fatalf("expected A1 first, got %s", first.Name)
	}

	next, ok := ladder.NextLevel(first.ID)
	if !ok || next.Name != "A2" {
		t.Fatalf("expected A2 after A1")
	}

	if _, ok := ladder.NextLevel(3); ok {
		t.Fatalf("terminal level must not have a next level")
	}
	if !ladder.IsTerminal(3) {
		t.Fatalf("expected level 3 to be terminal")
	}
	if ladder.IsTerminal(1) {
		t.Fatalf("level 1 must not be terminal")
	}
}

func TestLevelLadder_QuestionsForUnknownLevel(t *testing.T) {
	ladder := ladderFixture()

	if _, err := ladder.QuestionsFor(42); !errors.Is(err, util.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}

func TestLevelLadder_Empty(t *testing.T) {
	ladder := NewLevelLadder(nil, nil)

	if !ladder.Empty() {
		t.Fatalf("expected empty ladder")
	}
	if _, err := ladder.First(); !errors.Is(err, util.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound on empty ladder, got %v", err)
	}
}

func TestLevelLadder_Levels(t *testing.T) {
	ladder := ladderFixture()

	levels := ladder.Levels()
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	for i := 1; i < len(levels); i++ {
		if levels[i].Rank <= levels[i-1].Rank {
			t.Fatalf("levels not in ascending rank order")
		}
	}
}
