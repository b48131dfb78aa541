package handler

import (
	"net/http"

	"blink-builder-sol/internal/logic/action"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"

	"github.com/zeromicro/go-zero/rest/pathvar"
)

func templateOf(r *http.Request) string {
	return pathvar.Vars(r)["template"]
}

func DisplayConfigGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := action.NewDisplayConfigLogic(r.Context(), svcCtx, templateOf(r)).Get()
		writeResult(w, r, resp, err)
	}
}

func DisplayConfigSaveHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DisplayConfigRequest
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewDisplayConfigLogic(r.Context(), svcCtx, templateOf(r)).Save(&req)
		writeResult(w, r, resp, err)
	}
}
