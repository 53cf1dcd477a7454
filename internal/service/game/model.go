package game

import "time"

// 队伍
const (
	TEAM_RED  = "RED"
	TEAM_BLUE = "BLUE"
	// 未加入任何队伍
	TEAM_UNSET = ""
)

// 玩家角色
const (
	ROLE_SPYMASTER = "SPYMASTER"
	ROLE_GUESSER   = "GUESSER"
	ROLE_UNSET     = ""
)

// 卡牌阵营，生成后不可变更
const (
	CARD_RED      = "RED"
	CARD_BLUE     = "BLUE"
	CARD_NEUTRAL  = "NEUTRAL"
	CARD_ASSASSIN = "ASSASSIN"
)

// 会话状态
const (
	STATUS_LOBBY             = "LOBBY"
	STATUS_PLAYING           = "PLAYING"
	STATUS_RED_WON           = "RED_WON"
	STATUS_BLUE_WON          = "BLUE_WON"
	STATUS_ASSASSIN_HIT_RED  = "ASSASSIN_HIT_RED"
	STATUS_ASSASSIN_HIT_BLUE = "ASSASSIN_HIT_BLUE"
)

type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Team   string `json:"team,omitempty"`
	Role   string `json:"role,omitempty"`
	IsHost bool   `json:"is_host"`

	JoinedAt time.Time            `json:"-"`
	RespCh   chan ResponseWrapper `json:"-"`
}

type Card struct {
	Word     string `json:"word"`
	Affinity string `json:"affinity"`
	Revealed bool   `json:"revealed"`
	// 揭开该卡牌的队伍（不一定等于卡牌阵营），未揭开时为空
	RevealedBy string `json:"revealed_by,omitempty"`
}

// Board 是固定 25 张卡牌的有序序列
type Board []Card

type Clue struct {
	Word        string `json:"word"`
	Number      int    `json:"number"`
	SubmittedBy string `json:"submitted_by"`
}

// Score 记录双方剩余未揭开的本方卡牌数，只减不增
type Score struct {
	Red  int `json:"red"`
	Blue int `json:"blue"`
}

// Opponent 返回对方队伍
func Opponent(team string) string {
	if team == TEAM_RED {
		return TEAM_BLUE
	}
	return TEAM_RED
}
