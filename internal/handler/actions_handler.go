package handler

import (
	"net/http"
	"time"

	"blink-builder-sol/internal/logic/action"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
)

func DonateGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := action.NewDonateLogic(r.Context(), svcCtx).Describe()
		writeResult(w, r, resp, err)
	}
}

func DonatePostHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.DonateRequest
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewDonateLogic(r.Context(), svcCtx).Execute(&req)
		action.Observe(action.KindDonate, start, err)
		writeResult(w, r, resp, err)
	}
}

func VoteGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := action.NewVoteLogic(r.Context(), svcCtx).Describe()
		writeResult(w, r, resp, err)
	}
}

func VotePostHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.VoteRequest
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewVoteLogic(r.Context(), svcCtx).Execute(&req)
		action.Observe(action.KindVote, start, err)
		writeResult(w, r, resp, err)
	}
}

func SwapGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SwapQuery
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewSwapLogic(r.Context(), svcCtx).Describe(&req)
		writeResult(w, r, resp, err)
	}
}

func SwapPostHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.SwapRequest
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewSwapLogic(r.Context(), svcCtx).Execute(&req)
		action.Observe(action.KindSwap, start, err)
		writeResult(w, r, resp, err)
	}
}

func NftGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := action.NewNftLogic(r.Context(), svcCtx).Describe()
		writeResult(w, r, resp, err)
	}
}

func NftPostHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.NftRequest
		if !parse(w, r, &req) {
			return
		}
		kind := action.KindNft
		if req.Action == "list" {
			kind = action.KindNftList
		}
		resp, err := action.NewNftLogic(r.Context(), svcCtx).Execute(&req)
		action.Observe(kind, start, err)
		writeResult(w, r, resp, err)
	}
}

func TemplateNftGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TemplateNftQuery
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewTemplateNftLogic(r.Context(), svcCtx).Describe(&req)
		writeResult(w, r, resp, err)
	}
}

func TemplateNftPostHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.TemplateNftApproveRequest
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewTemplateNftLogic(r.Context(), svcCtx).Execute(&req)
		action.Observe(action.KindTemplateNft, start, err)
		writeResult(w, r, resp, err)
	}
}

// WagerGetHandler 同时服务 /wager 与 /wager/join 的 GET
func WagerGetHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.WagerQuery
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewWagerLogic(r.Context(), svcCtx).Describe(&req)
		writeResult(w, r, resp, err)
	}
}

func WagerCreateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.WagerCreateRequest
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewWagerLogic(r.Context(), svcCtx).Create(&req)
		action.Observe(action.KindWager, start, err)
		writeResult(w, r, resp, err)
	}
}

func WagerJoinHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var req types.WagerJoinRequest
		if !parse(w, r, &req) {
			return
		}
		resp, err := action.NewWagerLogic(r.Context(), svcCtx).Join(&req)
		action.Observe(action.KindWagerJoin, start, err)
		writeResult(w, r, resp, err)
	}
}

func ActionsJSONHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, r, action.ActionRules(), nil)
	}
}
