package game

// JoinGameRequest 由 WebSocket 层在连接建立时构造，携带响应通道
type JoinGameRequest struct {
	RoomID     string               `json:"room_id"`
	PlayerID   string               `json:"player_id,omitempty"`
	JoinerName string               `json:"joiner_name"`
	RespCh     chan ResponseWrapper `json:"-"`
}

type JoinGameResponse struct {
	RoomID string `json:"room_id"`
	Joiner Player `json:"joiner"`
}

type ChangeRoleRequest struct {
	Team string `json:"team"`
	Role string `json:"role"`
}

type SubmitClueRequest struct {
	Word   string `json:"word"`
	Number int    `json:"number"`
}

type VoteRequest struct {
	CardIndex int `json:"card_index"`
}

type ConfirmGuessRequest struct {
	CardIndex int `json:"card_index"`
}

// ExitGameRequest 由 WebSocket 层在连接断开时构造
type ExitGameRequest struct {
	PlayerID string               `json:"player_id"`
	RespCh   chan ResponseWrapper `json:"-"`
}

type ExitGameResponse struct {
	LeftPlayerID   string `json:"left_player_id"`
	LeftPlayerName string `json:"left_player_name"`
}
