package game

import "sort"

// VoteSet 记录每张卡牌当前有哪些玩家投票。
// 投票是回合内的临时簿记：提交提示、确认揭牌、回合结束时都会整体清空。
type VoteSet map[int]map[string]struct{}

func NewVoteSet() VoteSet {
	return make(VoteSet)
}

// Toggle 切换玩家对某张卡牌的投票：不存在则加入，已存在则撤回。
// 返回切换之后该玩家是否处于投票状态。
func (vs VoteSet) Toggle(cardIndex int, playerID string) bool {
	voters, ok := vs[cardIndex]
	if !ok {
		voters = make(map[string]struct{})
		vs[cardIndex] = voters
	}

	if _, voted := voters[playerID]; voted {
		delete(voters, playerID)
		if len(voters) == 0 {
			delete(vs, cardIndex)
		}
		return false
	}

	voters[playerID] = struct{}{}
	return true
}

// Clear 清空所有投票
func (vs VoteSet) Clear() {
	for idx := range vs {
		delete(vs, idx)
	}
}

// View 导出可序列化的视图，投票者按 ID 排序保证输出稳定
func (vs VoteSet) View() map[int][]string {
	if len(vs) == 0 {
		return nil
	}

	view := make(map[int][]string, len(vs))
	for idx, voters := range vs {
		ids := make([]string, 0, len(voters))
		for id := range voters {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		view[idx] = ids
	}

	return view
}
