// Package corpus 提供棋盘词库的加载。
// 词库是一个 JSON 字符串数组文件，未配置时使用内置词表。
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// DefaultWords 是内置的基础词表，保证开箱即用
var DefaultWords = []string{
	"APPLE", "BRIDGE", "CIRCLE", "DRAGON", "ENGINE",
	"FOREST", "GHOST", "HARBOR", "ISLAND", "JUNGLE",
	"KNIGHT", "LASER", "MIRROR", "NEEDLE", "OCEAN",
	"PIRATE", "QUEEN", "ROCKET", "SHADOW", "TEMPLE",
	"UMBRELLA", "VOLCANO", "WHALE", "YACHT", "ZEBRA",
	"ANCHOR", "BATTERY", "CASTLE", "DESERT", "EAGLE",
	"FALCON", "GARDEN", "HAMMER", "IVORY", "JACKET",
	"KETTLE", "LANTERN", "MARBLE", "NINJA", "ORGAN",
	"PYRAMID", "RIVER", "SPIDER", "THEATER", "UNICORN",
	"VELVET", "WIZARD", "WINTER", "SATURN", "COMPASS",
}

// Load 读取词库文件并做去重和归一化（统一为大写）。
// path 为空时返回内置词表。
func Load(path string) ([]string, error) {
	if path == "" {
		zap.S().Infof("未配置词库文件，使用内置词表（%d 个词）", len(DefaultWords))
		return DefaultWords, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取词库文件失败: %w", err)
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析词库文件失败: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	words := make([]string, 0, len(raw))

	for _, w := range raw {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}

		seen[w] = struct{}{}
		words = append(words, w)
	}

	zap.S().Infof("词库 %s 加载完成，共 %d 个词", path, len(words))

	return words, nil
}
