package game

import (
	"errors"
	"testing"
)

func voteReq(playerID string, cardIndex int) RequestWrapper {
	return RequestWrapper{
		ReqType:  REQ_VOTE,
		PlayerID: playerID,
		Data:     mustMarshal(VoteRequest{CardIndex: cardIndex}),
	}
}

func TestPlayingStageHandler_VoteToggle(t *testing.T) {
	ctx, psh := newPlayingContext()
	setActiveClue(ctx, 2)

	if err := psh.OnHandle(ctx, voteReq("rg", 3)); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	voters := ctx.Votes.View()[3]
	if len(voters) != 1 || voters[0] != "rg" {
		t.Fatalf("vote not recorded, got voters %v", voters)
	}
	if ctx.Log.Len() != 1 || ctx.Log.Entries()[0].Kind != LOG_VOTE {
		t.Fatalf("first vote should append a VOTE log entry")
	}

	// 重复投票即撤回，且不再写日志
	if err := psh.OnHandle(ctx, voteReq("rg", 3)); err != nil {
		t.Fatalf("toggle-off vote failed: %v", err)
	}

	if len(ctx.Votes) != 0 {
		t.Errorf("vote should be withdrawn, got %v", ctx.Votes.View())
	}
	if ctx.Log.Len() != 1 {
		t.Errorf("withdrawal must not append a log entry, got %d entries", ctx.Log.Len())
	}
}

func TestPlayingStageHandler_VoteGuards(t *testing.T) {
	ctx, psh := newPlayingContext()
	setActiveClue(ctx, 2)

	// 对方行动队员
	if err := psh.OnHandle(ctx, voteReq("bg", 3)); !errors.Is(err, ErrPrecondition) {
		t.Errorf("off-turn vote should be rejected, got: %v", err)
	}

	// 间谍头目不能投票
	if err := psh.OnHandle(ctx, voteReq("rs", 3)); !errors.Is(err, ErrPrecondition) {
		t.Errorf("spymaster vote should be rejected, got: %v", err)
	}

	// 已揭开的卡牌不能投票
	ctx.Board[3].Revealed = true
	if err := psh.OnHandle(ctx, voteReq("rg", 3)); !errors.Is(err, ErrConflict) {
		t.Errorf("vote on revealed card should conflict, got: %v", err)
	}

	// 下标越界
	if err := psh.OnHandle(ctx, voteReq("rg", BOARD_SIZE)); !errors.Is(err, ErrPrecondition) {
		t.Errorf("out of range vote should be rejected, got: %v", err)
	}
}

func TestPlayingStageHandler_VoteWithoutClueRejected(t *testing.T) {
	ctx, psh := newPlayingContext()

	if err := psh.OnHandle(ctx, voteReq("rg", 3)); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("vote before any clue should be rejected, got: %v", err)
	}
	if len(ctx.Votes) != 0 {
		t.Fatalf("rejected vote was recorded")
	}
}

func TestVoteSet_ViewSortsVoters(t *testing.T) {
	vs := NewVoteSet()
	vs.Toggle(5, "zed")
	vs.Toggle(5, "amy")
	vs.Toggle(5, "mia")

	view := vs.View()
	voters := view[5]

	if len(voters) != 3 {
		t.Fatalf("voters want 3 got %d", len(voters))
	}
	if voters[0] != "amy" || voters[1] != "mia" || voters[2] != "zed" {
		t.Fatalf("voters not sorted: %v", voters)
	}
}
