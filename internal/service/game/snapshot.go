package game

import "sort"

// CardView 是卡牌的对外视图。未揭开的卡牌阵营只对
// 间谍头目可见，对局结束后则对所有人公开。
type CardView struct {
	Word       string `json:"word"`
	Affinity   string `json:"affinity,omitempty"`
	Revealed   bool   `json:"revealed"`
	RevealedBy string `json:"revealed_by,omitempty"`
}

// SessionSnapshot 是推送给客户端的只读会话快照。
// 每次提交成功后全量下发，新加入的玩家也以它补齐当前状态。
type SessionSnapshot struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name,omitempty"`
	Status   string `json:"status"`

	StartingTeam string     `json:"starting_team,omitempty"`
	Turn         string     `json:"turn,omitempty"`
	Board        []CardView `json:"board,omitempty"`
	Clue         *Clue      `json:"clue,omitempty"`
	GuessesMade  int        `json:"guesses_made"`
	// 没有生效的提示时为 null
	GuessesRemaining *int             `json:"guesses_remaining,omitempty"`
	Score            *Score           `json:"score,omitempty"`
	Votes            map[int][]string `json:"votes,omitempty"`

	Players []Player   `json:"players"`
	YouID   string     `json:"you_id"`
	Log     []LogEntry `json:"log,omitempty"`
}

// BuildSnapshot 按接收者视角构建快照
func BuildSnapshot(ctx *GameContext, viewerID string) SessionSnapshot {
	snapshot := SessionSnapshot{
		RoomID:       ctx.RoomID,
		RoomName:     ctx.RoomName,
		Status:       ctx.Status,
		StartingTeam: ctx.StartingTeam,
		Turn:         ctx.Turn,
		GuessesMade:  ctx.GuessesMade,
		Votes:        ctx.Votes.View(),
		YouID:        viewerID,
		Log:          ctx.Log.Entries(),
	}

	if ctx.Clue != nil {
		clue := *ctx.Clue
		snapshot.Clue = &clue

		remaining := ctx.GuessesRemaining
		snapshot.GuessesRemaining = &remaining
	}

	if ctx.Board != nil {
		score := ctx.Score
		snapshot.Score = &score
		snapshot.Board = buildBoardView(ctx, viewerID)
	}

	snapshot.Players = buildPlayersList(ctx)

	return snapshot
}

func buildBoardView(ctx *GameContext, viewerID string) []CardView {
	viewer := ctx.Players[viewerID]
	seeAll := ctx.isFinishedStatus() ||
		(viewer != nil && viewer.Role == ROLE_SPYMASTER)

	view := make([]CardView, 0, len(ctx.Board))

	for _, card := range ctx.Board {
		cv := CardView{
			Word:       card.Word,
			Revealed:   card.Revealed,
			RevealedBy: card.RevealedBy,
		}

		if card.Revealed || seeAll {
			cv.Affinity = card.Affinity
		}

		view = append(view, cv)
	}

	return view
}

// buildPlayersList 导出按加入时间排序的玩家列表
func buildPlayersList(ctx *GameContext) []Player {
	players := make([]Player, 0, len(ctx.Players))
	for _, p := range ctx.Players {
		players = append(players, *p)
	}

	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})

	return players
}

func (gc *GameContext) isFinishedStatus() bool {
	switch gc.Status {
	case STATUS_RED_WON, STATUS_BLUE_WON, STATUS_ASSASSIN_HIT_RED, STATUS_ASSASSIN_HIT_BLUE:
		return true
	default:
		return false
	}
}
