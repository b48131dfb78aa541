package action

import (
	"blink-builder-sol/internal/types"
)

// DiscoveryConfig 构建发现文档所需的全部输入。
// 相同输入产出完全相同的文档（不含时间戳等易变字段）。
type DiscoveryConfig struct {
	Icon        string
	Label       string
	Title       string
	Description string
	Disabled    bool

	// Presets 固定金额（或固定参数）的链接，按顺序输出
	Presets []types.LinkedAction
	// Custom 可选的参数化链接，放在最后
	Custom *types.LinkedAction
}

// BuildDiscovery 所有 action 共用的 GET 文档构建器
func BuildDiscovery(c DiscoveryConfig) *types.ActionGetResponse {
	actions := make([]types.LinkedAction, 0, len(c.Presets)+1)
	actions = append(actions, c.Presets...)
	if c.Custom != nil {
		actions = append(actions, *c.Custom)
	}

	return &types.ActionGetResponse{
		Type:        types.ActionTypeAction,
		Label:       c.Label,
		Icon:        c.Icon,
		Title:       c.Title,
		Description: c.Description,
		Disabled:    c.Disabled,
		Links:       &types.ActionLinks{Actions: actions},
	}
}

// AmountLinks 每个金额生成一条交易链接，label 形如 "0.05 SOL"
func AmountLinks(amounts []string, unit string, href func(amount string) string) []types.LinkedAction {
	links := make([]types.LinkedAction, 0, len(amounts))
	for _, a := range amounts {
		links = append(links, types.LinkedAction{
			Type:  types.ActionTypeTransaction,
			Label: a + " " + unit,
			Href:  href(a),
		})
	}
	return links
}

// CustomAmountLink 带 {name} 占位符的参数化链接
func CustomAmountLink(label, href, param, paramLabel string) *types.LinkedAction {
	return &types.LinkedAction{
		Type:  types.ActionTypeTransaction,
		Label: label,
		Href:  href,
		Parameters: []types.ActionParameter{{
			Name:  param,
			Label: paramLabel,
			Type:  "number",
		}},
	}
}
