package handler

import (
	"net/http"

	"blink-builder-sol/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

// Routes 全部 action 与配置路由，每个路径同时注册 OPTIONS 预检
func Routes(svcCtx *svc.ServiceContext) []rest.Route {
	type endpoint struct {
		path string
		get  http.HandlerFunc
		post http.HandlerFunc
	}
	endpoints := []endpoint{
		{"/api/actions/donate", DonateGetHandler(svcCtx), DonatePostHandler(svcCtx)},
		{"/api/actions/vote", VoteGetHandler(svcCtx), VotePostHandler(svcCtx)},
		{"/api/actions/swap", SwapGetHandler(svcCtx), SwapPostHandler(svcCtx)},
		{"/api/actions/nft", NftGetHandler(svcCtx), NftPostHandler(svcCtx)},
		{"/api/actions/template-nft", TemplateNftGetHandler(svcCtx), TemplateNftPostHandler(svcCtx)},
		{"/api/actions/wager", WagerGetHandler(svcCtx), WagerCreateHandler(svcCtx)},
		{"/api/actions/wager/join", WagerGetHandler(svcCtx), WagerJoinHandler(svcCtx)},
		{"/api/config/:template", DisplayConfigGetHandler(svcCtx), DisplayConfigSaveHandler(svcCtx)},
		{"/actions.json", ActionsJSONHandler(), nil},
	}

	routes := make([]rest.Route, 0, len(endpoints)*3)
	for _, ep := range endpoints {
		routes = append(routes,
			rest.Route{Method: http.MethodOptions, Path: ep.path, Handler: PreflightHandler()},
			rest.Route{Method: http.MethodGet, Path: ep.path, Handler: ep.get},
		)
		if ep.post != nil {
			routes = append(routes, rest.Route{Method: http.MethodPost, Path: ep.path, Handler: ep.post})
		}
	}
	return routes
}

func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.AddRoutes(rest.WithMiddleware(ProtocolHeaders(svcCtx.Config.Network), Routes(svcCtx)...))
}
