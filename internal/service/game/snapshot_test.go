package game

import "testing"

func TestBuildSnapshot_HidesAffinityFromGuessers(t *testing.T) {
	ctx, _ := newPlayingContext()
	setActiveClue(ctx, 2)

	ctx.Board[0].Revealed = true
	ctx.Board[0].RevealedBy = TEAM_RED

	snap := BuildSnapshot(ctx, "rg")

	if snap.Board[0].Affinity != CARD_RED {
		t.Errorf("revealed card affinity should be visible, got %q", snap.Board[0].Affinity)
	}

	for i := 1; i < len(snap.Board); i++ {
		if snap.Board[i].Affinity != "" {
			t.Fatalf("unrevealed card %d leaked affinity %q to a guesser", i, snap.Board[i].Affinity)
		}
	}
}

func TestBuildSnapshot_SpymasterSeesAllAffinities(t *testing.T) {
	ctx, _ := newPlayingContext()

	snap := BuildSnapshot(ctx, "rs")

	for i, cv := range snap.Board {
		if cv.Affinity == "" {
			t.Fatalf("spymaster view missing affinity for card %d", i)
		}
	}
}

func TestBuildSnapshot_AllAffinitiesVisibleAfterGameEnd(t *testing.T) {
	ctx, _ := newPlayingContext()
	ctx.Status = STATUS_ASSASSIN_HIT_RED
	ctx.Turn = ""

	snap := BuildSnapshot(ctx, "rg")

	for i, cv := range snap.Board {
		if cv.Affinity == "" {
			t.Fatalf("post-game view missing affinity for card %d", i)
		}
	}
}

func TestBuildSnapshot_GuessesRemainingOnlyWithClue(t *testing.T) {
	ctx, _ := newPlayingContext()

	snap := BuildSnapshot(ctx, "rg")
	if snap.Clue != nil || snap.GuessesRemaining != nil {
		t.Fatalf("no clue active, snapshot should carry neither clue nor remaining")
	}

	setActiveClue(ctx, 2)

	snap = BuildSnapshot(ctx, "rg")
	if snap.Clue == nil {
		t.Fatalf("active clue missing from snapshot")
	}
	if snap.GuessesRemaining == nil || *snap.GuessesRemaining != 3 {
		t.Fatalf("guesses remaining want 3 got %v", snap.GuessesRemaining)
	}
}

func TestBuildSnapshot_PlayersOrderedByJoinTime(t *testing.T) {
	ctx := newLobbyContext()

	chs := make([]chan ResponseWrapper, 0, 3)
	for _, id := range []string{"c", "a", "b"} {
		ch := make(chan ResponseWrapper, 1)
		chs = append(chs, ch)
		UpsertPlayer(ctx, id, "Player-"+id, ch)
	}

	snap := BuildSnapshot(ctx, "a")

	if len(snap.Players) != 3 {
		t.Fatalf("players want 3 got %d", len(snap.Players))
	}

	// 按加入顺序输出，与 map 遍历顺序无关
	want := []string{"c", "a", "b"}
	for i, p := range snap.Players {
		if p.ID != want[i] {
			t.Fatalf("player order want %v got %s at %d", want, p.ID, i)
		}
	}

	if !snap.Players[0].IsHost {
		t.Errorf("first joined player should be host")
	}

	for _, ch := range chs {
		close(ch)
	}
}
