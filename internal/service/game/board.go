package game

import (
	"fmt"
	"math/rand/v2"
)

// 棋盘布局常量：先手 9 张、后手 8 张、平民 7 张、刺客 1 张，共 25 张
const (
	BOARD_SIZE          = 25
	STARTING_TEAM_CARDS = 9
	SECOND_TEAM_CARDS   = 8
	NEUTRAL_CARDS       = 7
	ASSASSIN_CARDS      = 1
)

// BoardGenerator 从词库中生成随机且配比均衡的棋盘。
// 词库和随机源都由外部注入，测试中可以用固定种子复现布局。
type BoardGenerator struct {
	corpus []string
	rng    *rand.Rand
}

func NewBoardGenerator(corpus []string, rng *rand.Rand) *BoardGenerator {
	return &BoardGenerator{
		corpus: corpus,
		rng:    rng,
	}
}

// Generate 生成一副新棋盘：
// 1. Fisher-Yates 洗牌后取前 25 个词（等价于无放回均匀抽样）
// 2. 按配比构造阵营序列并独立洗牌
// 3. 按下标一一对应组装卡牌
func (bg *BoardGenerator) Generate(startingTeam string) (Board, error) {
	if len(bg.corpus) < BOARD_SIZE {
		return nil, fmt.Errorf("%w：需要至少 %d 个词，当前只有 %d 个", ErrCorpusInsufficient, BOARD_SIZE, len(bg.corpus))
	}

	words := make([]string, len(bg.corpus))
	copy(words, bg.corpus)
	fisherYates(words, bg.rng)
	words = words[:BOARD_SIZE]

	affinities := make([]string, 0, BOARD_SIZE)
	for i := 0; i < STARTING_TEAM_CARDS; i++ {
		affinities = append(affinities, startingTeam)
	}
	for i := 0; i < SECOND_TEAM_CARDS; i++ {
		affinities = append(affinities, Opponent(startingTeam))
	}
	for i := 0; i < NEUTRAL_CARDS; i++ {
		affinities = append(affinities, CARD_NEUTRAL)
	}
	for i := 0; i < ASSASSIN_CARDS; i++ {
		affinities = append(affinities, CARD_ASSASSIN)
	}

	fisherYates(affinities, bg.rng)

	board := make(Board, 0, BOARD_SIZE)
	for i, word := range words {
		board = append(board, Card{
			Word:     word,
			Affinity: affinities[i],
		})
	}

	return board, nil
}

// fisherYates 原地洗牌，每种排列等概率
func fisherYates(s []string, rng *rand.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
