package action

import (
	"context"
	"errors"
	"net/url"

	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
)

const donatePath = "/api/actions/donate"

type DonateLogic struct {
	logic
}

func NewDonateLogic(ctx context.Context, svcCtx *svc.ServiceContext) *DonateLogic {
	return &DonateLogic{logic: newLogic(ctx, svcCtx)}
}

func (l *DonateLogic) Describe() (*types.ActionGetResponse, error) {
	cfg, err := l.displayConfig(store.TemplateDonate)
	if err != nil {
		return nil, err
	}

	return BuildDiscovery(DiscoveryConfig{
		Icon:        l.absoluteURL(cfg.Icon),
		Label:       "Donate",
		Title:       firstNonEmpty(cfg.Title, "Donate SOL"),
		Description: firstNonEmpty(cfg.Description, "Send a SOL donation straight from your wallet."),
		Presets: AmountLinks(amountsOr(cfg.Amounts, defaultAmounts), "SOL", func(a string) string {
			return donatePath + "?amount=" + url.QueryEscape(a)
		}),
		Custom: CustomAmountLink("Donate", donatePath+"?amount={amount}", "amount", "Enter a custom SOL amount"),
	}), nil
}

// Execute payer -> 配置的收款地址，单条转账
func (l *DonateLogic) Execute(req *types.DonateRequest) (*types.TransactionResponse, error) {
	lamports, err := parseLamports(req.Amount)
	if err != nil {
		return nil, err
	}
	payer, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}

	cfg, err := l.displayConfig(store.TemplateDonate)
	if err != nil {
		return nil, err
	}
	if cfg.PublicKey == "" {
		return nil, Network(errors.New("donation recipient is not configured"))
	}
	recipient, err := types.TryPubkeyFromBase58(cfg.PublicKey)
	if err != nil {
		return nil, Network(err)
	}

	resp, _, err := l.assemble(KindDonate, payer, []builder.Step{
		builder.Payment(builder.Transfer(payer, recipient, lamports)),
	}, mq.ActionEvent{Counterparty: recipient, Lamports: lamports})
	return resp, err
}
