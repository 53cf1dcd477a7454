package game

import "errors"

// 引擎对外的三类失败：
// 前置条件不满足（错误的操作者/回合/状态/参数）、
// 词库不足（开局时词语少于 25 个）、
// 并发冲突（落败的那一方请求，例如确认一张已被揭开的卡牌）。
// 任何一类都不会产生状态变更。
var (
	ErrPrecondition       = errors.New("前置条件不满足")
	ErrCorpusInsufficient = errors.New("词库数量不足")
	ErrConflict           = errors.New("操作冲突")
)
