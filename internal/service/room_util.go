package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// genRoomCode 生成 6 位大写房间码，方便口头传播
func genRoomCode() string {
	return strings.ToUpper(uuid.New().String()[:6])
}

// isRoomStale 判断房间是否空置超过宽限期，同时维护 entry 的空置时间戳。
// 宽限期从房间变空的那一刻起算，与房间已运行多久无关。
func isRoomStale(entry *roomEntry, now time.Time) bool {
	if entry == nil {
		return true
	}

	if entry.machine.PlayerCount() > 0 {
		entry.emptySince = time.Time{}
		return false
	}

	if entry.emptySince.IsZero() {
		entry.emptySince = now
		return false
	}

	return now.Sub(entry.emptySince) > EMPTY_ROOM_TTL
}
