package game

import (
	"math/rand/v2"

	"go.uber.org/zap"
)

// GameContext 是一个会话的完整聚合：棋盘、回合、提示、投票、比分和日志。
// 只有会话自己的状态机协程会修改它，其余组件一律读取快照。
type GameContext struct {
	RoomID   string
	RoomName string

	// 状态机当前阶段（Lobby / Playing / Finished）
	GameStage string
	// 会话状态（LOBBY / PLAYING / 各终局状态）
	Status string

	Players map[string]*Player

	Board        Board
	StartingTeam string
	// 当前行动的队伍，无人行动时为空
	Turn string

	Clue        *Clue
	GuessesMade int
	// 仅在提示生效期间有意义
	GuessesRemaining int

	Votes VoteSet
	Score Score
	Log   AuditLog

	Generator *BoardGenerator
	Rng       *rand.Rand
}

// GetHost 返回当前主持人，没有则返回 nil
func (gc *GameContext) GetHost() *Player {
	for _, p := range gc.Players {
		if p.IsHost {
			return p
		}
	}

	return nil
}

// ClearClue 清空当前提示及其剩余猜测次数
func (gc *GameContext) ClearClue() {
	gc.Clue = nil
	gc.GuessesRemaining = 0
}

// ResetToLobby 把会话重置回大厅：棋盘、比分、提示、回合、投票、日志全部清空，
// 玩家保留身份但清除队伍和角色
func (gc *GameContext) ResetToLobby() {
	gc.Status = STATUS_LOBBY
	gc.Board = nil
	gc.StartingTeam = ""
	gc.Turn = ""
	gc.ClearClue()
	gc.GuessesMade = 0
	gc.Votes.Clear()
	gc.Score = Score{}
	gc.Log.Reset()

	for _, p := range gc.Players {
		p.Team = TEAM_UNSET
		p.Role = ROLE_UNSET
	}
}

// UnicastResp 向单个玩家发送响应，通道满或未连接时丢弃并记录
func (gc *GameContext) UnicastResp(playerID string, resp ResponseWrapper) {
	player, ok := gc.Players[playerID]
	if !ok {
		zap.L().Warn(
			"无法找到玩家进行单播响应",
			zap.String("player_id", playerID),
		)
		return
	}

	select {
	case player.RespCh <- resp:
		zap.L().Debug(
			"发送单播响应成功",
			zap.String("player_id", playerID),
			zap.String("resp_type", resp.RespType),
		)
	default:
		zap.L().Warn(
			"发送单播响应失败：玩家响应通道已满",
			zap.String("player_id", playerID),
		)
	}
}

// BroadcastSnapshots 在一次提交之后向每个玩家推送按其视角定制的最新快照
func (gc *GameContext) BroadcastSnapshots() {
	for _, p := range gc.Players {
		gc.UnicastResp(p.ID, WrapResponse(RESP_GAME_STATE, BuildSnapshot(gc, p.ID)))
	}
}

// CloseAllPlayers 关闭所有玩家的响应通道，让写协程退出；仅在房间销毁时调用
func (gc *GameContext) CloseAllPlayers() {
	for _, p := range gc.Players {
		if p.RespCh != nil {
			close(p.RespCh)
			p.RespCh = nil
		}
	}
}
