package game

import (
	"encoding/json"

	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic("Failed to marshal: " + err.Error())
	}

	return data
}

// teamLabel 返回队伍的中文名，用于日志文本
func teamLabel(team string) string {
	switch team {
	case TEAM_RED:
		return "红队"
	case TEAM_BLUE:
		return "蓝队"
	default:
		return "未分队"
	}
}
