package action

import (
	"context"
	"fmt"
	"net/url"

	"blink-builder-sol/internal/consts"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/logic/swap"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/tools"
	"blink-builder-sol/internal/types"
)

const (
	swapPath = "/api/actions/swap"

	msgUnsupportedPair = "Unsupported input or output token"
)

var defaultSwapAmounts = []string{"0.1", "0.5", "1"}

type SwapLogic struct {
	logic
}

func NewSwapLogic(ctx context.Context, svcCtx *svc.ServiceContext) *SwapLogic {
	return &SwapLogic{logic: newLogic(ctx, svcCtx)}
}

// resolvePair 缺省为 SOL -> JUP；两端都必须在支持列表中且不能相同
func resolvePair(inputMint, outputMint string) (tools.SwapToken, tools.SwapToken, error) {
	in, ok := tools.LookupSwapToken(firstNonEmpty(inputMint, consts.WSOLMintStr))
	if !ok {
		return tools.SwapToken{}, tools.SwapToken{}, Validation(msgUnsupportedPair)
	}
	out, ok := tools.LookupSwapToken(firstNonEmpty(outputMint, consts.JUPMintStr))
	if !ok || out.Mint == in.Mint {
		return tools.SwapToken{}, tools.SwapToken{}, Validation(msgUnsupportedPair)
	}
	return in, out, nil
}

func pairQuery(in, out tools.SwapToken) url.Values {
	q := url.Values{}
	q.Set("inputMint", in.Mint.String())
	q.Set("outputMint", out.Mint.String())
	return q
}

func (l *SwapLogic) Describe(req *types.SwapQuery) (*types.ActionGetResponse, error) {
	in, out, err := resolvePair(req.InputMint, req.OutputMint)
	if err != nil {
		return nil, err
	}

	pair := pairQuery(in, out).Encode()
	return BuildDiscovery(DiscoveryConfig{
		Icon:        l.absoluteURL(out.Icon),
		Label:       fmt.Sprintf("Buy %s", out.Name),
		Title:       fmt.Sprintf("Swap %s for %s", in.Name, out.Name),
		Description: fmt.Sprintf("Swap %s for %s through the Jupiter aggregator.", in.Name, out.Name),
		Presets: AmountLinks(defaultSwapAmounts, in.Name, func(a string) string {
			return swapPath + "?amount=" + url.QueryEscape(a) + "&" + pair
		}),
		Custom: CustomAmountLink("Swap", swapPath+"?amount={amount}&"+pair, "amount",
			fmt.Sprintf("Enter a custom %s amount", in.Name)),
	}), nil
}

// Execute 报价与路由交给路由方，本地只负责 blockhash 和付款人校验
func (l *SwapLogic) Execute(req *types.SwapRequest) (*types.TransactionResponse, error) {
	in, out, err := resolvePair(req.InputMint, req.OutputMint)
	if err != nil {
		return nil, err
	}
	amount, err := builder.ToBaseUnits(req.Amount, in.Decimals)
	if err != nil {
		return nil, Validation("Invalid amount")
	}
	payer, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}

	// SOL 余额由路由方校验，SPL 输入在本地先做持有校验
	if in.Mint != consts.WSOLMint && !l.svcCtx.Verifier.VerifyHoldsAtLeast(l.ctx, payer, in.Mint, amount) {
		return nil, Eligibility(fmt.Sprintf("Insufficient %s balance", in.Name))
	}

	ref, err := l.svcCtx.Chain.BlockReference(l.ctx)
	if err != nil {
		return nil, Network(err)
	}
	quote, err := l.svcCtx.Router.Quote(l.ctx, swap.QuoteRequest{
		InputMint:  in.Mint.String(),
		OutputMint: out.Mint.String(),
		Amount:     amount,
	})
	if err != nil {
		return nil, Network(err)
	}
	envelope, err := l.svcCtx.Router.BuildSwap(l.ctx, quote, payer, ref)
	if err != nil {
		return nil, Network(err)
	}
	tx, err := swap.Rewrap(envelope, payer)
	if err != nil {
		return nil, err
	}

	l.publish(&mq.ActionEvent{
		Kind:         KindSwap,
		Payer:        payer,
		Asset:        out.Mint,
		Lamports:     amount,
		Blockhash:    ref.Blockhash,
		ExpiryHeight: ref.ExpiryHeight,
	})

	return &types.TransactionResponse{
		Type:        types.ActionTypeTransaction,
		Transaction: tx,
		Message:     fmt.Sprintf("Swap %s %s for %s", req.Amount, in.Name, out.Name),
		BlinkURL:    l.blinkURL(swapPath, pairQuery(in, out)),
	}, nil
}
