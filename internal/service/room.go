package service

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"codenames-be/internal/service/dto"
	"codenames-be/internal/service/game"

	"go.uber.org/zap"
)

// 空房间的保留时长，超过后由清理协程回收
const EMPTY_ROOM_TTL = 2 * time.Minute

type RoomService struct {
	state *roomServiceState
}

type roomServiceState struct {
	mu sync.RWMutex

	// 从房间码到房间实体的映射
	rooms map[string]*roomEntry

	// 创建房间时使用的词库，服务启动后只读
	words []string

	cleanUpDone chan struct{}
}

type roomEntry struct {
	machine *game.GameMachine
	doneCh  chan struct{}

	// 房间变空的时刻，有玩家时为零值；只由清理协程读写
	emptySince time.Time
}

func NewRoomService(words []string) *RoomService {
	state := &roomServiceState{
		rooms:       make(map[string]*roomEntry),
		words:       words,
		cleanUpDone: make(chan struct{}),
	}

	// 启动一个 goroutine 定期清理空置的房间
	go startCleanupLoop(state)

	return &RoomService{
		state: state,
	}
}

func startCleanupLoop(state *roomServiceState) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-state.cleanUpDone:
			return

		case now := <-ticker.C:
			state.mu.Lock()

			for roomID, entry := range state.rooms {
				if !isRoomStale(entry, now) {
					continue
				}

				zap.S().Infof("房间 %s 长时间无人，开始清理", roomID)

				// 通知对应的状态机协程退出
				close(entry.doneCh)
				delete(state.rooms, roomID)
			}

			state.mu.Unlock()
		}
	}
}

// Close 停止清理协程并销毁所有房间
func (rs *RoomService) Close() {
	close(rs.state.cleanUpDone)

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	for roomID, entry := range rs.state.rooms {
		close(entry.doneCh)
		delete(rs.state.rooms, roomID)
	}
}

func (rs *RoomService) CreateRoom(req dto.CreateRoomRequest) (dto.CreateRoomResponse, error) {
	if req.RoomName == "" {
		return dto.CreateRoomResponse{}, errors.New("房间名称不能为空")
	}

	rs.state.mu.Lock()
	defer rs.state.mu.Unlock()

	roomID := genRoomCode()
	for rs.state.rooms[roomID] != nil {
		roomID = genRoomCode()
	}

	// 每个房间使用独立的随机源，便于在同一进程内并发运行多个会话
	rng := rand.New(rand.NewPCG(
		uint64(time.Now().UnixNano()),
		rand.Uint64(),
	))

	generator := game.NewBoardGenerator(rs.state.words, rng)

	doneCh := make(chan struct{})
	machine := game.NewGameMachine(roomID, req.RoomName, generator, rng, doneCh)

	// 新房间从创建起即视为空置，宽限期内等待第一位玩家
	rs.state.rooms[roomID] = &roomEntry{
		machine:    machine,
		doneCh:     doneCh,
		emptySince: time.Now(),
	}

	go machine.Start()

	zap.S().Infof("房间 %s（%s）创建成功", roomID, req.RoomName)

	return dto.CreateRoomResponse{
		RoomID:   roomID,
		RoomName: req.RoomName,
	}, nil
}

// JoinRoom 把加入请求转发给目标房间的状态机，
// 成功后返回该房间的请求通道，供 WebSocket 层持续投递后续请求。
// 加入确认通过 req.RespCh 异步送达。
func (rs *RoomService) JoinRoom(req *game.JoinGameRequest) (chan game.RequestWrapper, error) {
	if req.RoomID == "" {
		return nil, errors.New("房间 ID 不能为空")
	}
	if req.JoinerName == "" {
		return nil, errors.New("加入者名称不能为空")
	}

	rs.state.mu.RLock()
	entry := rs.state.rooms[req.RoomID]
	rs.state.mu.RUnlock()

	if entry == nil {
		return nil, errors.New("房间不存在")
	}

	wrapper := game.RequestWrapper{
		ReqType:    game.REQ_JOIN_GAME,
		PlayerID:   req.PlayerID,
		NativeData: req,
	}

	zap.S().Debugf("房间 %s 收到加入请求：%s", req.RoomID, req.JoinerName)

	reqTimer := time.NewTimer(5 * time.Second)
	defer reqTimer.Stop()

	select {
	case entry.machine.GetReqCh() <- wrapper:
		return entry.machine.GetReqCh(), nil

	case <-reqTimer.C:
		zap.S().Warnf("房间 %s 无法及时处理加入请求，%s 发送失败", req.RoomID, req.JoinerName)
		return nil, errors.New("加入房间失败")
	}
}
