package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
)

func testCorpus(n int) []string {
	words := make([]string, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, fmt.Sprintf("WORD%02d", i))
	}

	return words
}

func testRng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func countAffinities(board Board) map[string]int {
	counts := make(map[string]int)
	for _, card := range board {
		counts[card.Affinity]++
	}

	return counts
}

func TestBoardGenerator_Composition(t *testing.T) {
	gen := NewBoardGenerator(testCorpus(40), testRng(1))

	board, err := gen.Generate(TEAM_RED)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(board) != BOARD_SIZE {
		t.Fatalf("board size want %d got %d", BOARD_SIZE, len(board))
	}

	counts := countAffinities(board)

	if counts[CARD_RED] != STARTING_TEAM_CARDS {
		t.Errorf("red cards want %d got %d", STARTING_TEAM_CARDS, counts[CARD_RED])
	}
	if counts[CARD_BLUE] != SECOND_TEAM_CARDS {
		t.Errorf("blue cards want %d got %d", SECOND_TEAM_CARDS, counts[CARD_BLUE])
	}
	if counts[CARD_NEUTRAL] != NEUTRAL_CARDS {
		t.Errorf("neutral cards want %d got %d", NEUTRAL_CARDS, counts[CARD_NEUTRAL])
	}
	if counts[CARD_ASSASSIN] != ASSASSIN_CARDS {
		t.Errorf("assassin cards want %d got %d", ASSASSIN_CARDS, counts[CARD_ASSASSIN])
	}

	seen := make(map[string]struct{}, len(board))
	for _, card := range board {
		if _, dup := seen[card.Word]; dup {
			t.Fatalf("duplicate word on board: %s", card.Word)
		}
		seen[card.Word] = struct{}{}

		if card.Revealed {
			t.Fatalf("freshly generated card %s must not be revealed", card.Word)
		}
	}
}

func TestBoardGenerator_StartingTeamGetsExtraCard(t *testing.T) {
	gen := NewBoardGenerator(testCorpus(40), testRng(2))

	board, err := gen.Generate(TEAM_BLUE)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	counts := countAffinities(board)

	if counts[CARD_BLUE] != STARTING_TEAM_CARDS {
		t.Errorf("starting blue cards want %d got %d", STARTING_TEAM_CARDS, counts[CARD_BLUE])
	}
	if counts[CARD_RED] != SECOND_TEAM_CARDS {
		t.Errorf("second red cards want %d got %d", SECOND_TEAM_CARDS, counts[CARD_RED])
	}
}

func TestBoardGenerator_InsufficientCorpus(t *testing.T) {
	gen := NewBoardGenerator(testCorpus(BOARD_SIZE-1), testRng(3))

	_, err := gen.Generate(TEAM_RED)
	if err == nil {
		t.Fatalf("generate with %d words should fail", BOARD_SIZE-1)
	}
	if !errors.Is(err, ErrCorpusInsufficient) {
		t.Fatalf("want ErrCorpusInsufficient got: %v", err)
	}
}

func TestBoardGenerator_DoesNotMutateCorpus(t *testing.T) {
	corpus := testCorpus(30)

	snapshot := make([]string, len(corpus))
	copy(snapshot, corpus)

	gen := NewBoardGenerator(corpus, testRng(4))

	if _, err := gen.Generate(TEAM_RED); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for i := range corpus {
		if corpus[i] != snapshot[i] {
			t.Fatalf("corpus mutated at %d: want %s got %s", i, snapshot[i], corpus[i])
		}
	}
}
