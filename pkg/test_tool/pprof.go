package testtool

import (
	"net/http"
	_ "net/http/pprof" // 匯入後會自動註冊 pprof endpoint

	"chat_gateway_service/pkg/config"
	"chat_gateway_service/pkg/logger"

	"go.uber.org/zap"
)

// StartPprof 非 production 環境啟動 pprof 監控伺服器
// /debug/pprof/goroutine 可觀察每條連線的 read/write goroutine
func StartPprof(addr string) {
	if config.IsProduction() {
		logger.Log.Info("Production environment detected, pprof is disabled.")
		return
	}

	go func() {
		logger.Log.Info("Starting pprof server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Log.Warn("pprof server failed", zap.Error(err))
		}
	}()
}
