package game

import (
	"errors"
	"testing"
)

// 阵容齐整、随时可以开局的大厅
func newStartableLobby(corpusSize int) (*GameContext, *lobbyStageHandler) {
	rng := testRng(11)

	ctx := &GameContext{
		RoomID:    "ROOM01",
		GameStage: STAGE_LOBBY,
		Status:    STATUS_LOBBY,
		Players: map[string]*Player{
			"rs": {ID: "rs", Name: "RedSpy", Team: TEAM_RED, Role: ROLE_SPYMASTER, IsHost: true},
			"rg": {ID: "rg", Name: "RedGuess", Team: TEAM_RED, Role: ROLE_GUESSER},
			"bs": {ID: "bs", Name: "BlueSpy", Team: TEAM_BLUE, Role: ROLE_SPYMASTER},
			"bg": {ID: "bg", Name: "BlueGuess", Team: TEAM_BLUE, Role: ROLE_GUESSER},
		},
		Votes:     NewVoteSet(),
		Generator: NewBoardGenerator(testCorpus(corpusSize), rng),
		Rng:       rng,
	}

	lsh := NewLobbyStageHandler()
	lsh.SetOnSwitch(func(next string) {
		ctx.GameStage = next
	})

	return ctx, lsh
}

func TestLobbyStageHandler_StartGame(t *testing.T) {
	ctx, lsh := newStartableLobby(40)

	req := RequestWrapper{ReqType: REQ_START_GAME, PlayerID: "rs"}

	if err := lsh.OnHandle(ctx, req); err != nil {
		t.Fatalf("start game failed: %v", err)
	}

	if ctx.Status != STATUS_PLAYING {
		t.Errorf("status want PLAYING got %q", ctx.Status)
	}
	if ctx.GameStage != STAGE_PLAYING {
		t.Errorf("stage should switch to playing, got %q", ctx.GameStage)
	}
	if len(ctx.Board) != BOARD_SIZE {
		t.Fatalf("board size want %d got %d", BOARD_SIZE, len(ctx.Board))
	}

	if ctx.StartingTeam != TEAM_RED && ctx.StartingTeam != TEAM_BLUE {
		t.Fatalf("starting team not drawn: %q", ctx.StartingTeam)
	}
	if ctx.Turn != ctx.StartingTeam {
		t.Errorf("first turn must belong to the starting team")
	}

	counts := countAffinities(ctx.Board)
	if counts[ctx.StartingTeam] != STARTING_TEAM_CARDS {
		t.Errorf("starting team cards want %d got %d", STARTING_TEAM_CARDS, counts[ctx.StartingTeam])
	}

	// 先手方比分为 9，后手方为 8
	want := Score{Red: SECOND_TEAM_CARDS, Blue: STARTING_TEAM_CARDS}
	if ctx.StartingTeam == TEAM_RED {
		want = Score{Red: STARTING_TEAM_CARDS, Blue: SECOND_TEAM_CARDS}
	}
	if ctx.Score != want {
		t.Errorf("score want %+v got %+v", want, ctx.Score)
	}

	if ctx.Log.Len() != 1 || ctx.Log.Entries()[0].Kind != LOG_START {
		t.Errorf("start should write exactly one START log entry")
	}
}

func TestLobbyStageHandler_StartRequiresHost(t *testing.T) {
	ctx, lsh := newStartableLobby(40)

	req := RequestWrapper{ReqType: REQ_START_GAME, PlayerID: "rg"}

	if err := lsh.OnHandle(ctx, req); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("non-host start should be rejected, got: %v", err)
	}
	if ctx.Status != STATUS_LOBBY {
		t.Fatalf("rejected start changed status: %q", ctx.Status)
	}
}

func TestLobbyStageHandler_StartRequiresFullRoster(t *testing.T) {
	ctx, lsh := newStartableLobby(40)

	// 蓝方失去行动队员
	ctx.Players["bg"].Role = ROLE_UNSET

	req := RequestWrapper{ReqType: REQ_START_GAME, PlayerID: "rs"}

	if err := lsh.OnHandle(ctx, req); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("start with incomplete roster should be rejected, got: %v", err)
	}
}

func TestLobbyStageHandler_StartWithSmallCorpusLeavesLobbyIntact(t *testing.T) {
	ctx, lsh := newStartableLobby(10)

	req := RequestWrapper{ReqType: REQ_START_GAME, PlayerID: "rs"}

	err := lsh.OnHandle(ctx, req)
	if !errors.Is(err, ErrCorpusInsufficient) {
		t.Fatalf("want ErrCorpusInsufficient got: %v", err)
	}

	// 失败的开局不留下半成品状态
	if ctx.Status != STATUS_LOBBY {
		t.Errorf("status want LOBBY got %q", ctx.Status)
	}
	if ctx.GameStage != STAGE_LOBBY {
		t.Errorf("stage want Lobby got %q", ctx.GameStage)
	}
	if ctx.Board != nil {
		t.Errorf("board must stay empty after failed start")
	}
}

func TestLobbyStageHandler_ChangeRole(t *testing.T) {
	ctx, lsh := newStartableLobby(40)
	ctx.Players["p5"] = &Player{ID: "p5", Name: "Eve"}

	req := RequestWrapper{
		ReqType:  REQ_CHANGE_ROLE,
		PlayerID: "p5",
		Data:     mustMarshal(ChangeRoleRequest{Team: TEAM_BLUE, Role: ROLE_GUESSER}),
	}

	if err := lsh.OnHandle(ctx, req); err != nil {
		t.Fatalf("change role failed: %v", err)
	}

	if ctx.Players["p5"].Team != TEAM_BLUE || ctx.Players["p5"].Role != ROLE_GUESSER {
		t.Fatalf("role change not applied: %+v", ctx.Players["p5"])
	}
}

func TestFinishedStageHandler_RestartResetsToLobby(t *testing.T) {
	ctx, _ := newPlayingContext()

	ctx.Status = STATUS_RED_WON
	ctx.GameStage = STAGE_FINISHED
	ctx.Turn = ""
	ctx.Log.Append(LOG_START, "游戏开始")
	ctx.Log.Append(LOG_REVEAL, "最后一张")

	fsh := NewFinishedStageHandler()
	fsh.SetOnSwitch(func(next string) {
		ctx.GameStage = next
	})

	req := RequestWrapper{ReqType: REQ_RESTART_GAME, PlayerID: "rs"}

	if err := fsh.OnHandle(ctx, req); err != nil {
		t.Fatalf("restart failed: %v", err)
	}

	if ctx.Status != STATUS_LOBBY {
		t.Errorf("status want LOBBY got %q", ctx.Status)
	}
	if ctx.GameStage != STAGE_LOBBY {
		t.Errorf("stage want Lobby got %q", ctx.GameStage)
	}
	if ctx.Board != nil {
		t.Errorf("board should be cleared on restart")
	}

	// 玩家身份保留，队伍和角色清空
	if len(ctx.Players) != 4 {
		t.Fatalf("players want 4 got %d", len(ctx.Players))
	}
	for id, p := range ctx.Players {
		if p.Team != TEAM_UNSET || p.Role != ROLE_UNSET {
			t.Errorf("player %s kept team/role after restart: %q/%q", id, p.Team, p.Role)
		}
	}
	if !ctx.Players["rs"].IsHost {
		t.Errorf("host flag should survive restart")
	}

	// 旧对局日志清空，只留重置记录
	if ctx.Log.Len() != 1 || ctx.Log.Entries()[0].Kind != LOG_RESTART {
		t.Errorf("restart should leave a single RESTART log entry, got %d", ctx.Log.Len())
	}
}

func TestFinishedStageHandler_RestartRequiresHost(t *testing.T) {
	ctx, _ := newPlayingContext()
	ctx.Status = STATUS_BLUE_WON
	ctx.GameStage = STAGE_FINISHED

	fsh := NewFinishedStageHandler()
	fsh.SetOnSwitch(func(next string) {
		ctx.GameStage = next
	})

	req := RequestWrapper{ReqType: REQ_RESTART_GAME, PlayerID: "bg"}

	if err := fsh.OnHandle(ctx, req); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("non-host restart should be rejected, got: %v", err)
	}
	if ctx.Status != STATUS_BLUE_WON {
		t.Fatalf("rejected restart changed status: %q", ctx.Status)
	}
}

func TestFinishedStageHandler_GuessRejectedAfterGameEnd(t *testing.T) {
	ctx, _ := newPlayingContext()
	ctx.Status = STATUS_RED_WON
	ctx.GameStage = STAGE_FINISHED

	fsh := NewFinishedStageHandler()
	fsh.SetOnSwitch(func(next string) {
		ctx.GameStage = next
	})

	if err := fsh.OnHandle(ctx, confirmReq("rg", 5)); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("confirm after game end should be rejected, got: %v", err)
	}
	if ctx.Board[5].Revealed {
		t.Fatalf("card revealed after game end")
	}
}
