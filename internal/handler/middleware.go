package handler

import (
	"net/http"

	"blink-builder-sol/internal/consts"
)

// ProtocolHeaders 为每个响应写入 Actions 协议要求的 CORS 与版本头
func ProtocolHeaders(network string) func(next http.HandlerFunc) http.HandlerFunc {
	chainID := consts.BlockchainID(network)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Content-Encoding, Accept-Encoding")
			h.Set("Access-Control-Expose-Headers", "X-Action-Version, X-Blockchain-Ids")
			h.Set("X-Blockchain-Ids", chainID)
			h.Set("X-Action-Version", consts.ActionVersion)
			h.Set("Content-Type", "application/json")
			next(w, r)
		}
	}
}

// PreflightHandler OPTIONS 预检，头部由中间件写入
func PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
