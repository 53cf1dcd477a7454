package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// UpsertPlayer 按 ID 幂等地加入或更新玩家。
// 已存在的 ID 视为断线重连：更新名字并替换响应通道，
// 同时关闭旧通道让旧连接的写协程退出。
// 第一个加入的玩家成为主持人。
func UpsertPlayer(ctx *GameContext, id, name string, respCh chan ResponseWrapper) *Player {
	if existing, ok := ctx.Players[id]; ok {
		if existing.RespCh != nil && existing.RespCh != respCh {
			close(existing.RespCh)
			zap.L().Debug(
				"检测到相同 player ID，执行按 ID 重连",
				zap.String("player_id", id),
				zap.String("room_id", ctx.RoomID),
			)
		}

		existing.RespCh = respCh
		if name != "" {
			existing.Name = name
		}

		return existing
	}

	player := &Player{
		ID:       id,
		Name:     name,
		IsHost:   len(ctx.Players) == 0,
		JoinedAt: time.Now(),
		RespCh:   respCh,
	}

	ctx.Players[id] = player

	return player
}

// RemovePlayer 将玩家移出房间；如果移走的是主持人则立即移交主持人标记
func RemovePlayer(ctx *GameContext, id string) {
	player, ok := ctx.Players[id]
	if !ok {
		return
	}

	delete(ctx.Players, id)

	if player.IsHost {
		reassignHost(ctx)
	}
}

// reassignHost 把主持人标记交给加入最早的剩余玩家，保证全场恰有一名主持人
func reassignHost(ctx *GameContext) {
	var next *Player

	for _, p := range ctx.Players {
		if next == nil || p.JoinedAt.Before(next.JoinedAt) {
			next = p
		}
	}

	if next != nil {
		next.IsHost = true
	}
}

// SpymasterOf 返回某队当前的间谍头目，没有则返回 nil
func SpymasterOf(ctx *GameContext, team string) *Player {
	for _, p := range ctx.Players {
		if p.Team == team && p.Role == ROLE_SPYMASTER {
			return p
		}
	}

	return nil
}

// ChangeRoleOrTeam 修改玩家的队伍和角色。
// 申请成为某队间谍头目时，如果该队已有其他玩家占据该角色则整体拒绝，
// 不产生任何变更。检查和写入都在会话协程内完成，天然原子。
func ChangeRoleOrTeam(ctx *GameContext, playerID, team, role string) error {
	player, ok := ctx.Players[playerID]
	if !ok {
		return fmt.Errorf("%w：玩家不存在", ErrPrecondition)
	}

	if team != TEAM_RED && team != TEAM_BLUE && team != TEAM_UNSET {
		return fmt.Errorf("%w：未知的队伍 %q", ErrPrecondition, team)
	}
	if role != ROLE_SPYMASTER && role != ROLE_GUESSER && role != ROLE_UNSET {
		return fmt.Errorf("%w：未知的角色 %q", ErrPrecondition, role)
	}

	if role == ROLE_SPYMASTER {
		if team == TEAM_UNSET {
			return fmt.Errorf("%w：成为间谍头目前必须先选择队伍", ErrPrecondition)
		}

		if other := SpymasterOf(ctx, team); other != nil && other.ID != playerID {
			return fmt.Errorf("%w：%s已有间谍头目 %s", ErrConflict, teamLabel(team), other.Name)
		}
	}

	player.Team = team
	player.Role = role

	return nil
}

// SwitchTeam 让玩家换到对方队伍并保留角色。
// 间谍头目换队时同样受到目标队伍唯一头目规则的约束。
func SwitchTeam(ctx *GameContext, playerID string) error {
	player, ok := ctx.Players[playerID]
	if !ok {
		return fmt.Errorf("%w：玩家不存在", ErrPrecondition)
	}

	if player.Team == TEAM_UNSET || player.Role == ROLE_UNSET {
		return fmt.Errorf("%w：需要已有队伍和角色才能换队", ErrPrecondition)
	}

	dest := Opponent(player.Team)

	if player.Role == ROLE_SPYMASTER {
		if other := SpymasterOf(ctx, dest); other != nil && other.ID != playerID {
			return fmt.Errorf("%w：%s已有间谍头目 %s", ErrConflict, teamLabel(dest), other.Name)
		}
	}

	player.Team = dest

	return nil
}

// CanStart 判断能否开局：至少 4 名玩家，且双方都有间谍头目和行动队员
func CanStart(players map[string]*Player) bool {
	if len(players) < 4 {
		return false
	}

	var redSpymaster, blueSpymaster, redGuesser, blueGuesser bool

	for _, p := range players {
		switch {
		case p.Team == TEAM_RED && p.Role == ROLE_SPYMASTER:
			redSpymaster = true
		case p.Team == TEAM_BLUE && p.Role == ROLE_SPYMASTER:
			blueSpymaster = true
		case p.Team == TEAM_RED && p.Role == ROLE_GUESSER:
			redGuesser = true
		case p.Team == TEAM_BLUE && p.Role == ROLE_GUESSER:
			blueGuesser = true
		}
	}

	return redSpymaster && blueSpymaster && redGuesser && blueGuesser
}
