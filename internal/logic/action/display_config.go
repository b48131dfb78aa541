package action

import (
	"context"
	"strings"

	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"
)

var templates = map[string]struct{}{
	store.TemplateDonate: {},
	store.TemplateVote:   {},
	store.TemplateBlink:  {},
}

// DisplayConfigLogic 模板展示配置的读写
type DisplayConfigLogic struct {
	logic
	template string
}

func NewDisplayConfigLogic(ctx context.Context, svcCtx *svc.ServiceContext, template string) *DisplayConfigLogic {
	return &DisplayConfigLogic{logic: newLogic(ctx, svcCtx), template: template}
}

func (l *DisplayConfigLogic) checkTemplate() error {
	if _, ok := templates[l.template]; !ok {
		return NotFound("Unknown template")
	}
	return nil
}

func (l *DisplayConfigLogic) Get() (*store.DisplayConfig, error) {
	if err := l.checkTemplate(); err != nil {
		return nil, err
	}
	return l.displayConfig(l.template)
}

// Save 标题、描述必填；填写了的地址与金额必须合法
func (l *DisplayConfigLogic) Save(req *types.DisplayConfigRequest) (*store.DisplayConfig, error) {
	if err := l.checkTemplate(); err != nil {
		return nil, err
	}

	cfg := &store.DisplayConfig{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		PublicKey:   strings.TrimSpace(req.PublicKey),
		Name:        strings.TrimSpace(req.Name),
		Owner:       strings.TrimSpace(req.Owner),
		MintAddress: strings.TrimSpace(req.MintAddress),
	}
	if cfg.Title == "" || cfg.Description == "" {
		return nil, Validation("Missing required fields.")
	}
	// 按固定顺序校验，多个字段非法时总是报告第一个
	for _, f := range []struct{ name, value string }{
		{"publicKey", cfg.PublicKey},
		{"owner", cfg.Owner},
		{"mintAddress", cfg.MintAddress},
	} {
		if f.value == "" {
			continue
		}
		if _, err := types.TryPubkeyFromBase58(f.value); err != nil {
			return nil, Validation("Invalid %s", f.name)
		}
	}
	for _, a := range req.Amounts {
		a = strings.TrimSpace(a)
		if _, err := builder.ToLamports(a); err != nil {
			return nil, Validation("Invalid amount")
		}
		cfg.Amounts = append(cfg.Amounts, a)
	}

	if err := l.svcCtx.Stores.Configs.SaveConfig(l.ctx, l.template, cfg); err != nil {
		return nil, Network(err)
	}
	logger.Infof("[Action] display config saved, template=%s, title=%s", l.template, cfg.Title)
	return cfg, nil
}
