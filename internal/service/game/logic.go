package game

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// 会话分为 3 个阶段：
// 1. 大厅阶段（Lobby）：玩家加入房间、挑选队伍和角色，等待主持人开局
// 2. 对局阶段（Playing）：间谍头目提示、行动队员投票和确认揭牌，直到分出胜负
// 3. 结束阶段（Finished）：对局已有结果，主持人可以重置回大厅再来一局
// 对应的会话状态见 model.go：大厅为 LOBBY，对局为 PLAYING，
// 结束阶段对应 RED_WON / BLUE_WON / ASSASSIN_HIT_RED / ASSASSIN_HIT_BLUE 四种结果。
const (
	STAGE_LOBBY    = "Lobby"
	STAGE_PLAYING  = "Playing"
	STAGE_FINISHED = "Finished"
)

type StageHandler interface {
	Stage() string

	OnEnter(ctx *GameContext)
	OnHandle(ctx *GameContext, req RequestWrapper) error

	SetOnSwitch(func(nextStage string))
}

// 大厅阶段是整个会话最初始的阶段
type lobbyStageHandler struct {
	onSwitch func(string)
}

func NewLobbyStageHandler() *lobbyStageHandler {
	return &lobbyStageHandler{}
}

func (lsh *lobbyStageHandler) Stage() string {
	return STAGE_LOBBY
}

func (lsh *lobbyStageHandler) OnEnter(ctx *GameContext) {
	ctx.Status = STATUS_LOBBY
}

func (lsh *lobbyStageHandler) OnHandle(ctx *GameContext, req RequestWrapper) error {
	if jreq := TryUnwrapJoinGameRequest(req); jreq != nil {
		return onPlayerJoin(ctx, jreq)
	}

	if ereq := TryUnwrapExitGameRequest(req); ereq != nil {
		return onPlayerExit(ctx, ereq)
	}

	if creq := TryUnwrapChangeRoleRequest(req); creq != nil {
		return ChangeRoleOrTeam(ctx, req.PlayerID, creq.Team, creq.Role)
	}

	if req.ReqType == REQ_SWITCH_TEAM {
		if err := SwitchTeam(ctx, req.PlayerID); err != nil {
			return err
		}

		actor := ctx.Players[req.PlayerID]
		ctx.Log.Append(LOG_SWITCH, fmt.Sprintf(
			"%s 改换门庭，加入%s", actor.Name, teamLabel(actor.Team),
		))

		return nil
	}

	if req.ReqType == REQ_START_GAME {
		actor := ctx.Players[req.PlayerID]
		if actor == nil || !actor.IsHost {
			return fmt.Errorf("%w：只有主持人可以开始游戏", ErrPrecondition)
		}

		if !CanStart(ctx.Players) {
			return fmt.Errorf("%w：需要至少 4 名玩家，且双方各有一名间谍头目和至少一名行动队员", ErrPrecondition)
		}

		// 随机抽取先手队伍，先手方多一张特工卡
		startingTeam := TEAM_RED
		if ctx.Rng.IntN(2) == 1 {
			startingTeam = TEAM_BLUE
		}

		// 生成失败（词库不足）时会话停留在大厅，不产生任何变更
		board, err := ctx.Generator.Generate(startingTeam)
		if err != nil {
			return err
		}

		ctx.Board = board
		ctx.StartingTeam = startingTeam
		ctx.Turn = startingTeam

		if startingTeam == TEAM_RED {
			ctx.Score = Score{Red: STARTING_TEAM_CARDS, Blue: SECOND_TEAM_CARDS}
		} else {
			ctx.Score = Score{Red: SECOND_TEAM_CARDS, Blue: STARTING_TEAM_CARDS}
		}

		ctx.GuessesMade = 0
		ctx.ClearClue()
		ctx.Votes.Clear()
		ctx.Log.Reset()
		ctx.Log.Append(LOG_START, fmt.Sprintf(
			"游戏开始：%s先行（%s %d 张，%s %d 张）",
			teamLabel(startingTeam),
			teamLabel(startingTeam), STARTING_TEAM_CARDS,
			teamLabel(Opponent(startingTeam)), SECOND_TEAM_CARDS,
		))

		ctx.Status = STATUS_PLAYING
		lsh.onSwitch(STAGE_PLAYING)

		return nil
	}

	return fmt.Errorf("%w：大厅阶段不支持该请求类型", ErrPrecondition)
}

func (lsh *lobbyStageHandler) SetOnSwitch(onSwitch func(string)) {
	lsh.onSwitch = onSwitch
}

// 对局阶段处理器，唯一会修改比分、回合和胜负状态的地方
type playingStageHandler struct {
	onSwitch func(string)
}

func NewPlayingStageHandler() *playingStageHandler {
	return &playingStageHandler{}
}

func (psh *playingStageHandler) Stage() string {
	return STAGE_PLAYING
}

func (psh *playingStageHandler) OnEnter(ctx *GameContext) {
	zap.L().Info(
		"对局开始",
		zap.String("room_id", ctx.RoomID),
		zap.String("starting_team", ctx.StartingTeam),
	)
}

func (psh *playingStageHandler) OnHandle(ctx *GameContext, req RequestWrapper) error {
	// 任何阶段都允许加入（中途加入的玩家没有队伍，只能旁观）
	if jreq := TryUnwrapJoinGameRequest(req); jreq != nil {
		return onPlayerJoin(ctx, jreq)
	}

	if ereq := TryUnwrapExitGameRequest(req); ereq != nil {
		return onPlayerExit(ctx, ereq)
	}

	if creq := TryUnwrapSubmitClueRequest(req); creq != nil {
		actor := ctx.Players[req.PlayerID]
		if actor == nil || actor.Role != ROLE_SPYMASTER || actor.Team != ctx.Turn {
			return fmt.Errorf("%w：只有当前行动队伍的间谍头目可以提交提示", ErrPrecondition)
		}

		if ctx.Clue != nil {
			return fmt.Errorf("%w：本回合已有生效的提示", ErrPrecondition)
		}

		word := strings.ToUpper(strings.TrimSpace(creq.Word))
		if word == "" {
			return fmt.Errorf("%w：提示词不能为空", ErrPrecondition)
		}
		if creq.Number < 0 {
			return fmt.Errorf("%w：提示数字不能为负", ErrPrecondition)
		}

		ctx.Clue = &Clue{
			Word:        word,
			Number:      creq.Number,
			SubmittedBy: actor.ID,
		}
		ctx.GuessesMade = 0

		// 约定俗成的规则：数字 N 允许猜 N+1 次（额外一次奖励机会），0 允许猜 1 次
		if creq.Number == 0 {
			ctx.GuessesRemaining = 1
		} else {
			ctx.GuessesRemaining = creq.Number + 1
		}

		ctx.Votes.Clear()
		ctx.Log.Append(LOG_CLUE, fmt.Sprintf(
			"%s间谍头目 %s 给出提示：%s（%d）",
			teamLabel(actor.Team), actor.Name, word, creq.Number,
		))

		return nil
	}

	if vreq := TryUnwrapVoteRequest(req); vreq != nil {
		actor, card, err := guessGuard(ctx, req.PlayerID, vreq.CardIndex)
		if err != nil {
			return err
		}

		// 投票是纯切换：再投一次即撤回，只有新增投票才写日志
		if added := ctx.Votes.Toggle(vreq.CardIndex, actor.ID); added {
			ctx.Log.Append(LOG_VOTE, fmt.Sprintf(
				"%s 投票选择卡牌「%s」", actor.Name, card.Word,
			))
		}

		return nil
	}

	if creq := TryUnwrapConfirmGuessRequest(req); creq != nil {
		actor, _, err := guessGuard(ctx, req.PlayerID, creq.CardIndex)
		if err != nil {
			return err
		}

		psh.applyReveal(ctx, actor, creq.CardIndex)

		return nil
	}

	if req.ReqType == REQ_END_TURN {
		actor := ctx.Players[req.PlayerID]
		if actor == nil || actor.Role != ROLE_GUESSER || actor.Team != ctx.Turn {
			return fmt.Errorf("%w：只有当前行动队伍的行动队员可以结束回合", ErrPrecondition)
		}

		if ctx.Clue == nil {
			return fmt.Errorf("%w：当前没有生效的提示", ErrPrecondition)
		}

		flipTurn(ctx, Opponent(actor.Team))
		ctx.Log.Append(LOG_TURN, fmt.Sprintf(
			"%s主动结束回合，轮到%s行动",
			teamLabel(actor.Team), teamLabel(ctx.Turn),
		))

		return nil
	}

	if req.ReqType == REQ_SWITCH_TEAM {
		if err := SwitchTeam(ctx, req.PlayerID); err != nil {
			return err
		}

		actor := ctx.Players[req.PlayerID]
		ctx.Log.Append(LOG_SWITCH, fmt.Sprintf(
			"%s 改换门庭，加入%s", actor.Name, teamLabel(actor.Team),
		))

		return nil
	}

	return fmt.Errorf("%w：对局进行中不支持该请求类型", ErrPrecondition)
}

func (psh *playingStageHandler) SetOnSwitch(onSwitch func(string)) {
	psh.onSwitch = onSwitch
}

// guessGuard 校验投票与确认共用的前置条件，返回操作者和目标卡牌
func guessGuard(ctx *GameContext, playerID string, cardIndex int) (*Player, *Card, error) {
	actor := ctx.Players[playerID]
	if actor == nil || actor.Role != ROLE_GUESSER || actor.Team != ctx.Turn {
		return nil, nil, fmt.Errorf("%w：只有当前行动队伍的行动队员可以猜测卡牌", ErrPrecondition)
	}

	if ctx.Clue == nil {
		return nil, nil, fmt.Errorf("%w：间谍头目尚未给出提示", ErrPrecondition)
	}
	if ctx.GuessesRemaining <= 0 {
		return nil, nil, fmt.Errorf("%w：本回合的猜测次数已用尽", ErrPrecondition)
	}

	if cardIndex < 0 || cardIndex >= len(ctx.Board) {
		return nil, nil, fmt.Errorf("%w：卡牌下标 %d 越界", ErrPrecondition, cardIndex)
	}

	card := &ctx.Board[cardIndex]
	if card.Revealed {
		// 并发竞争的落败方：另一次确认已经先行提交
		return nil, nil, fmt.Errorf("%w：卡牌「%s」已被揭开", ErrConflict, card.Word)
	}

	return actor, card, nil
}

// applyReveal 揭开卡牌并一次性应用全部后果（比分、回合、胜负、日志）。
// 进入此函数时所有前置条件都已在同一个临界区内验证过。
func (psh *playingStageHandler) applyReveal(ctx *GameContext, actor *Player, cardIndex int) {
	card := &ctx.Board[cardIndex]
	acting := ctx.Turn
	opponent := Opponent(acting)

	card.Revealed = true
	card.RevealedBy = acting
	ctx.GuessesMade++
	ctx.Votes.Clear()

	switch card.Affinity {
	case acting:
		remaining := decrementScore(ctx, acting)
		if remaining == 0 {
			psh.finish(ctx, winStatus(acting))
			ctx.Log.Append(LOG_REVEAL, fmt.Sprintf(
				"%s 揭开「%s」，是%s特工！%s找齐了所有特工，获得胜利",
				actor.Name, card.Word, teamLabel(acting), teamLabel(acting),
			))
		} else if ctx.GuessesRemaining-1 == 0 {
			flipTurn(ctx, opponent)
			ctx.Log.Append(LOG_REVEAL, fmt.Sprintf(
				"%s 揭开「%s」，是%s特工，但猜测次数已用尽，回合转交%s",
				actor.Name, card.Word, teamLabel(acting), teamLabel(opponent),
			))
		} else {
			ctx.GuessesRemaining--
			ctx.Log.Append(LOG_REVEAL, fmt.Sprintf(
				"%s 揭开「%s」，是%s特工，还可以继续猜 %d 次",
				actor.Name, card.Word, teamLabel(acting), ctx.GuessesRemaining,
			))
		}

	case opponent:
		remaining := decrementScore(ctx, opponent)
		if remaining == 0 {
			psh.finish(ctx, winStatus(opponent))
			ctx.Log.Append(LOG_REVEAL, fmt.Sprintf(
				"%s 揭开「%s」，竟是%s特工！%s因此提前胜出",
				actor.Name, card.Word, teamLabel(opponent), teamLabel(opponent),
			))
		} else {
			flipTurn(ctx, opponent)
			ctx.Log.Append(LOG_REVEAL, fmt.Sprintf(
				"%s 揭开「%s」，竟是%s特工，回合转交%s",
				actor.Name, card.Word, teamLabel(opponent), teamLabel(opponent),
			))
		}

	case CARD_NEUTRAL:
		flipTurn(ctx, opponent)
		ctx.Log.Append(LOG_REVEAL, fmt.Sprintf(
			"%s 揭开「%s」，是无辜的平民，回合转交%s",
			actor.Name, card.Word, teamLabel(opponent),
		))

	case CARD_ASSASSIN:
		psh.finish(ctx, assassinStatus(acting))
		ctx.Log.Append(LOG_REVEAL, fmt.Sprintf(
			"%s 揭开「%s」，是刺客！%s当场出局",
			actor.Name, card.Word, teamLabel(acting),
		))
	}
}

func winStatus(team string) string {
	if team == TEAM_RED {
		return STATUS_RED_WON
	}

	return STATUS_BLUE_WON
}

func assassinStatus(team string) string {
	if team == TEAM_RED {
		return STATUS_ASSASSIN_HIT_RED
	}

	return STATUS_ASSASSIN_HIT_BLUE
}

// decrementScore 扣减某队剩余卡牌数并返回扣减后的值，比分永不为负
func decrementScore(ctx *GameContext, team string) int {
	if team == TEAM_RED {
		ctx.Score.Red--
		return ctx.Score.Red
	}

	ctx.Score.Blue--
	return ctx.Score.Blue
}

// flipTurn 把回合交给对方：清空提示、投票和已猜次数
func flipTurn(ctx *GameContext, to string) {
	ctx.Turn = to
	ctx.ClearClue()
	ctx.GuessesMade = 0
	ctx.Votes.Clear()
}

// finish 以给定结果终结对局
func (psh *playingStageHandler) finish(ctx *GameContext, status string) {
	ctx.Status = status
	ctx.Turn = ""
	ctx.ClearClue()
	ctx.Votes.Clear()
	psh.onSwitch(STAGE_FINISHED)
}

// 结束阶段处理器
type finishedStageHandler struct {
	onSwitch func(string)
}

func NewFinishedStageHandler() *finishedStageHandler {
	return &finishedStageHandler{}
}

func (fsh *finishedStageHandler) Stage() string {
	return STAGE_FINISHED
}

func (fsh *finishedStageHandler) OnEnter(ctx *GameContext) {
	zap.L().Info(
		"对局结束",
		zap.String("room_id", ctx.RoomID),
		zap.String("status", ctx.Status),
	)
}

func (fsh *finishedStageHandler) OnHandle(ctx *GameContext, req RequestWrapper) error {
	if jreq := TryUnwrapJoinGameRequest(req); jreq != nil {
		return onPlayerJoin(ctx, jreq)
	}

	if ereq := TryUnwrapExitGameRequest(req); ereq != nil {
		return onPlayerExit(ctx, ereq)
	}

	if req.ReqType == REQ_RESTART_GAME {
		actor := ctx.Players[req.PlayerID]
		if actor == nil || !actor.IsHost {
			return fmt.Errorf("%w：只有主持人可以重新开始", ErrPrecondition)
		}

		// 玩家身份保留，队伍、角色和整局状态全部清空
		ctx.ResetToLobby()
		ctx.Log.Append(LOG_RESTART, fmt.Sprintf(
			"主持人 %s 重置了对局，所有人回到大厅重新分队", actor.Name,
		))

		fsh.onSwitch(STAGE_LOBBY)

		return nil
	}

	return fmt.Errorf("%w：对局已经结束", ErrPrecondition)
}

func (fsh *finishedStageHandler) SetOnSwitch(onSwitch func(string)) {
	fsh.onSwitch = onSwitch
}

func onPlayerJoin(ctx *GameContext, req *JoinGameRequest) error {
	playerID := req.PlayerID
	if playerID == "" {
		id := GenID()
		playerID = id[len(id)-8:]
	}

	player := UpsertPlayer(ctx, playerID, req.JoinerName, req.RespCh)

	// 先单播加入确认（携带玩家 ID），随后的快照广播会补齐完整状态
	ctx.UnicastResp(player.ID, WrapResponse(
		RESP_JOIN_GAME,
		JoinGameResponse{
			RoomID: ctx.RoomID,
			Joiner: *player,
		},
	))

	zap.L().Info(
		"玩家加入房间",
		zap.String("room_id", ctx.RoomID),
		zap.String("player_id", player.ID),
		zap.String("player_name", player.Name),
	)

	return nil
}

func onPlayerExit(ctx *GameContext, req *ExitGameRequest) error {
	player, exists := ctx.Players[req.PlayerID]
	if !exists {
		zap.L().Warn(
			"玩家不存在，无法退出",
			zap.String("player_id", req.PlayerID),
		)
		return nil
	}

	// 通道不匹配说明该连接已被重连顶替，旧连接退出时不能移除玩家。
	// 旧通道可能已经关闭，这里不再向它写入任何内容。
	if req.RespCh != nil && player.RespCh != req.RespCh {
		zap.L().Info(
			"检测到被顶替的旧连接退出，保留玩家",
			zap.String("player_id", req.PlayerID),
		)
		return nil
	}

	// 先发送退出确认，再关闭通道让写协程退出
	ctx.UnicastResp(player.ID, WrapResponse(
		RESP_EXIT_GAME,
		ExitGameResponse{
			LeftPlayerID:   player.ID,
			LeftPlayerName: player.Name,
		},
	))

	if player.RespCh != nil {
		close(player.RespCh)
		player.RespCh = nil
	}

	RemovePlayer(ctx, player.ID)

	zap.L().Info(
		"玩家已离开房间",
		zap.String("room_id", ctx.RoomID),
		zap.String("player_id", player.ID),
		zap.String("player_name", player.Name),
	)

	return nil
}
