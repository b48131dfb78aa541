package action

import "blink-builder-sol/internal/types"

// ActionRules /actions.json：站点路径到 action API 的映射
func ActionRules() *types.ActionsJSON {
	return &types.ActionsJSON{
		Rules: []types.ActionRule{
			{PathPattern: "/donate", ApiPath: donatePath},
			{PathPattern: "/vote", ApiPath: votePath},
			{PathPattern: "/swap", ApiPath: swapPath},
			{PathPattern: "/nft", ApiPath: nftPath},
			{PathPattern: "/template-nft", ApiPath: templateNftPath},
			{PathPattern: "/api/actions/**", ApiPath: "/api/actions/**"},
		},
	}
}
