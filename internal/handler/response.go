package handler

import (
	"net/http"

	"blink-builder-sol/internal/logic/action"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"

	"github.com/zeromicro/go-zero/rest/httpx"
)

func writeResult(w http.ResponseWriter, r *http.Request, resp interface{}, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.OkJsonCtx(r.Context(), w, resp)
}

// writeError 网络类错误只对外返回通用消息，原因写日志
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := action.Classify(err)
	if e.Kind == action.KindNetwork {
		logger.Errorf("[Handler] %s %s failed: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Debugf("[Handler] %s %s rejected: %v", r.Method, r.URL.Path, err)
	}
	httpx.WriteJsonCtx(r.Context(), w, e.Kind.Status(), &types.ErrorResponse{
		Error:   e.Kind.String(),
		Message: e.Message,
	})
}

// parse 请求参数解析失败按 400 处理
func parse(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := httpx.Parse(r, v); err != nil {
		writeError(w, r, action.Validation("Invalid request: %v", err))
		return false
	}
	return true
}
