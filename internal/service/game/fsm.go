package game

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const REQ_CHAN_BUF_SIZE = 64

// GameMachine 是会话的状态机，每个房间对应一个独立协程。
// 所有请求通过 reqCh 串行进入，状态变更在单协程内完成，
// 因此任意两次提交之间不存在竞争，同一张卡牌至多被确认一次。
type GameMachine struct {
	ctx     *GameContext
	handler StageHandler

	reqCh  chan RequestWrapper
	doneCh chan struct{}

	createdAt   time.Time
	playerCount atomic.Int32
}

func NewGameMachine(
	roomID string,
	roomName string,
	generator *BoardGenerator,
	rng *rand.Rand,
	doneCh chan struct{},
) *GameMachine {
	ctx := &GameContext{
		RoomID:    roomID,
		RoomName:  roomName,
		GameStage: STAGE_LOBBY,
		Status:    STATUS_LOBBY,
		Players:   make(map[string]*Player),
		Votes:     NewVoteSet(),
		Generator: generator,
		Rng:       rng,
	}

	gm := &GameMachine{
		ctx:       ctx,
		handler:   NewLobbyStageHandler(),
		reqCh:     make(chan RequestWrapper, REQ_CHAN_BUF_SIZE),
		doneCh:    doneCh,
		createdAt: time.Now(),
	}
	gm.handler.SetOnSwitch(gm.markSwitch)

	return gm
}

func (gm *GameMachine) GetReqCh() chan RequestWrapper {
	return gm.reqCh
}

// PlayerCount 供房间清理协程读取，不加锁
func (gm *GameMachine) PlayerCount() int {
	return int(gm.playerCount.Load())
}

func (gm *GameMachine) CreatedAt() time.Time {
	return gm.createdAt
}

// Start 运行状态机主循环，直到 doneCh 被关闭。
// 每个请求的处理是一次完整的提交：要么全部生效并广播快照，
// 要么拒绝并单播错误，会话状态保持不变。
func (gm *GameMachine) Start() {
	zap.L().Info(
		"游戏状态机启动",
		zap.String("room_id", gm.ctx.RoomID),
	)

	gm.handler.OnEnter(gm.ctx)

	for {
		var req RequestWrapper

		select {
		case req = <-gm.reqCh:
			zap.L().Debug(
				"收到请求",
				zap.String("room_id", gm.ctx.RoomID),
				zap.String("req_type", req.ReqType),
				zap.String("player_id", req.PlayerID),
			)

		case <-gm.doneCh:
			gm.ctx.CloseAllPlayers()
			zap.L().Info(
				"游戏状态机退出",
				zap.String("room_id", gm.ctx.RoomID),
			)
			return
		}

		err := gm.handler.OnHandle(gm.ctx, req)
		gm.playerCount.Store(int32(len(gm.ctx.Players)))

		if err != nil {
			zap.L().Debug(
				"请求被拒绝",
				zap.String("room_id", gm.ctx.RoomID),
				zap.String("req_type", req.ReqType),
				zap.Error(err),
			)

			if req.PlayerID != "" {
				gm.ctx.UnicastResp(req.PlayerID, WrapErrResponse(err.Error()))
			}

			continue
		}

		if gm.ctx.GameStage != gm.handler.Stage() {
			gm.switchStage()
		}

		gm.ctx.BroadcastSnapshots()
	}
}

// markSwitch 由处理器在需要切换阶段时调用，真正的切换在主循环中完成
func (gm *GameMachine) markSwitch(nextStage string) {
	gm.ctx.GameStage = nextStage
}

func (gm *GameMachine) switchStage() {
	zap.L().Info(
		"切换游戏阶段",
		zap.String("room_id", gm.ctx.RoomID),
		zap.String("from", gm.handler.Stage()),
		zap.String("to", gm.ctx.GameStage),
	)

	switch gm.ctx.GameStage {
	case STAGE_LOBBY:
		gm.handler = NewLobbyStageHandler()
	case STAGE_PLAYING:
		gm.handler = NewPlayingStageHandler()
	case STAGE_FINISHED:
		gm.handler = NewFinishedStageHandler()
	default:
		zap.L().Error(
			"未知的游戏阶段，无法切换",
			zap.String("stage", gm.ctx.GameStage),
		)
		return
	}

	gm.handler.SetOnSwitch(gm.markSwitch)
	gm.handler.OnEnter(gm.ctx)
}
