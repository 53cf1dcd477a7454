package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 请求类型
const (
	REQ_JOIN_GAME     = "JoinGame"
	REQ_CHANGE_ROLE   = "ChangeRole"
	REQ_START_GAME    = "StartGame"
	REQ_SUBMIT_CLUE   = "SubmitClue"
	REQ_VOTE          = "Vote"
	REQ_CONFIRM_GUESS = "ConfirmGuess"
	REQ_END_TURN      = "EndTurn"
	REQ_SWITCH_TEAM   = "SwitchTeam"
	REQ_RESTART_GAME  = "RestartGame"
	REQ_EXIT_GAME     = "ExitGame"
)

// RequestWrapper 是进入状态机的统一信封。
// PlayerID 由 WebSocket 层按连接身份填入，不信任客户端载荷；
// NativeData 用于服务端内部构造的请求（加入/退出），跳过序列化。
type RequestWrapper struct {
	ReqType  string          `json:"request_type"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`

	NativeData any `json:"-"`
}

func TryUnwrapJoinGameRequest(wrapper RequestWrapper) *JoinGameRequest {
	if wrapper.ReqType != REQ_JOIN_GAME {
		return nil
	}

	if req, ok := wrapper.NativeData.(*JoinGameRequest); ok {
		return req
	}

	var joinGameRequest JoinGameRequest

	err := json.Unmarshal(wrapper.Data, &joinGameRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap JoinGameRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &joinGameRequest
}

func TryUnwrapExitGameRequest(wrapper RequestWrapper) *ExitGameRequest {
	if wrapper.ReqType != REQ_EXIT_GAME {
		return nil
	}

	if req, ok := wrapper.NativeData.(*ExitGameRequest); ok {
		return req
	}

	var exitGameRequest ExitGameRequest

	err := json.Unmarshal(wrapper.Data, &exitGameRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap ExitGameRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &exitGameRequest
}

func TryUnwrapChangeRoleRequest(wrapper RequestWrapper) *ChangeRoleRequest {
	if wrapper.ReqType != REQ_CHANGE_ROLE {
		return nil
	}

	var changeRoleRequest ChangeRoleRequest

	err := json.Unmarshal(wrapper.Data, &changeRoleRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap ChangeRoleRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &changeRoleRequest
}

func TryUnwrapSubmitClueRequest(wrapper RequestWrapper) *SubmitClueRequest {
	if wrapper.ReqType != REQ_SUBMIT_CLUE {
		return nil
	}

	var submitClueRequest SubmitClueRequest

	err := json.Unmarshal(wrapper.Data, &submitClueRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap SubmitClueRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &submitClueRequest
}

func TryUnwrapVoteRequest(wrapper RequestWrapper) *VoteRequest {
	if wrapper.ReqType != REQ_VOTE {
		return nil
	}

	var voteRequest VoteRequest

	err := json.Unmarshal(wrapper.Data, &voteRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap VoteRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &voteRequest
}

func TryUnwrapConfirmGuessRequest(wrapper RequestWrapper) *ConfirmGuessRequest {
	if wrapper.ReqType != REQ_CONFIRM_GUESS {
		return nil
	}

	var confirmGuessRequest ConfirmGuessRequest

	err := json.Unmarshal(wrapper.Data, &confirmGuessRequest)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap ConfirmGuessRequest",
			zap.Error(err),
			zap.Any("wrapper", wrapper),
		)
		return nil
	}

	return &confirmGuessRequest
}

// 响应类型
const (
	RESP_ERROR = "Error"

	RESP_JOIN_GAME  = "JoinGame"
	RESP_EXIT_GAME  = "ExitGame"
	RESP_GAME_STATE = "GameState"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data,omitempty"`
	ErrMsg   string `json:"error_message,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
	}
}
