package main

import (
	"fmt"

	"codenames-be/internal/api/http"
	"codenames-be/internal/config"
	"codenames-be/internal/corpus"
	"codenames-be/internal/logger"
	"codenames-be/internal/service"
	"codenames-be/internal/state"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)

	// 加载词库
	words, err := corpus.Load(cfg.WordsFile)
	if err != nil {
		panic(fmt.Errorf("加载词库失败: %w", err))
	}

	// 组装应用状态
	appState := state.NewAppState(
		cfg,
		service.NewRoomService(words),
	)

	// 启动服务器
	http.RunServer(appState)
}
