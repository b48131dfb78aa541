package action

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"blink-builder-sol/internal/chain"
	"blink-builder-sol/internal/logic/assembler"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/internal/utils"
	"blink-builder-sol/pkg/logger"
)

// action 种类，同时用作指标与事件的 kind 标签
const (
	KindDonate      = "donate"
	KindVote        = "vote"
	KindSwap        = "swap"
	KindNft         = "nft"
	KindNftList     = "nft-list"
	KindTemplateNft = "template-nft"
	KindWager       = "wager"
	KindWagerJoin   = "wager-join"
)

const defaultIcon = "/solana-pic.png"

var defaultAmounts = []string{"0.01", "0.05", "0.1"}

type logic struct {
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func newLogic(ctx context.Context, svcCtx *svc.ServiceContext) logic {
	return logic{ctx: ctx, svcCtx: svcCtx}
}

// absoluteURL 相对路径按 PublicBaseURL 补全，已是绝对地址或 data URI 的原样返回
func (l *logic) absoluteURL(path string) string {
	if path == "" {
		path = defaultIcon
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "data:") {
		return path
	}
	return utils.ActionURL(l.svcCtx.Config.PublicBaseURL, path, nil)
}

func (l *logic) actionURL(path string, query url.Values) string {
	return utils.ActionURL(l.svcCtx.Config.PublicBaseURL, path, query)
}

// blinkURL action 地址的 dial.to 分享链接
func (l *logic) blinkURL(path string, query url.Values) string {
	return utils.DialBlinkURL(l.actionURL(path, query))
}

// displayConfig 读取模板展示配置；未配置时返回空配置
func (l *logic) displayConfig(template string) (*store.DisplayConfig, error) {
	cfg, err := l.svcCtx.Stores.Configs.GetConfig(l.ctx, template)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return &store.DisplayConfig{}, nil
	}
	return nil, Network(err)
}

// assemble 组装交易并发布事件
func (l *logic) assemble(kind string, payer types.Pubkey, steps []builder.Step, event mq.ActionEvent) (*types.TransactionResponse, chain.BlockReference, error) {
	env, err := l.svcCtx.Assembler.Assemble(l.ctx, payer, steps)
	if err != nil {
		return nil, chain.BlockReference{}, err
	}
	return l.respond(kind, payer, env, event), env.Ref, nil
}

// respond 发布事件并生成交易响应
func (l *logic) respond(kind string, payer types.Pubkey, env *assembler.Envelope, event mq.ActionEvent) *types.TransactionResponse {
	event.Kind = kind
	event.Payer = payer
	event.Blockhash = env.Ref.Blockhash
	event.ExpiryHeight = env.Ref.ExpiryHeight
	l.publish(&event)

	return &types.TransactionResponse{
		Type:        types.ActionTypeTransaction,
		Transaction: env.Transaction,
	}
}

// publish 事件发布失败只记日志，不影响请求结果
func (l *logic) publish(e *mq.ActionEvent) {
	if l.svcCtx.Publisher == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	if err := l.svcCtx.Publisher.Publish(l.ctx, e); err != nil {
		logger.Warnf("[Action] publish %s event failed, payer=%s, err=%v", e.Kind, e.Payer, err)
	}
}

func parseAccount(s string) (types.Pubkey, error) {
	if strings.TrimSpace(s) == "" {
		return types.Pubkey{}, Validation("Missing account")
	}
	pk, err := types.TryPubkeyFromBase58(s)
	if err != nil {
		return types.Pubkey{}, Validation("Invalid account")
	}
	return pk, nil
}

func parsePubkey(field, s string) (types.Pubkey, error) {
	if strings.TrimSpace(s) == "" {
		return types.Pubkey{}, Validation("Missing %s", field)
	}
	pk, err := types.TryPubkeyFromBase58(s)
	if err != nil {
		return types.Pubkey{}, Validation("Invalid %s", field)
	}
	return pk, nil
}

func parseLamports(amount string) (uint64, error) {
	lamports, err := builder.ToLamports(amount)
	if err != nil {
		return 0, Validation("Invalid amount")
	}
	return lamports, nil
}

func amountsOr(amounts, fallback []string) []string {
	if len(amounts) == 0 {
		return fallback
	}
	return amounts
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
