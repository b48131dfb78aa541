package action

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"blink-builder-sol/internal/consts"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"
)

const (
	nftPath = "/api/actions/nft"

	nftActionBuy  = "buy"
	nftActionList = "list"

	msgSellerNotHolder = "Seller does not own this NFT."
	msgNotHolder       = "You do not own this NFT."
	msgNotCreator      = "You are not the creator of this NFT."
	msgBuyOwnNft       = "You cannot buy your own NFT."
	msgPriceMismatch   = "Amount does not match the listing price."
	msgListingExists   = "This NFT is already listed at a different price."
)

var defaultNftAmounts = []string{"0.5", "1", "2"}

type NftLogic struct {
	logic
}

func NewNftLogic(ctx context.Context, svcCtx *svc.ServiceContext) *NftLogic {
	return &NftLogic{logic: newLogic(ctx, svcCtx)}
}

func buyQuery(mint, seller types.Pubkey, amount string) url.Values {
	q := url.Values{}
	q.Set("action", nftActionBuy)
	q.Set("amount", amount)
	q.Set("mintAddress", mint.String())
	q.Set("seller", seller.String())
	return q
}

// Describe 买入链接按金额档位生成，最后一条为卖家生成 blink 的 list 链接。
// 配置里没有 owner/mint 时文档置为 disabled。
func (l *NftLogic) Describe() (*types.ActionGetResponse, error) {
	cfg, err := l.displayConfig(store.TemplateBlink)
	if err != nil {
		return nil, err
	}

	dc := DiscoveryConfig{
		Icon:        l.absoluteURL(cfg.Icon),
		Label:       "Buy NFT",
		Title:       firstNonEmpty(cfg.Title, "Buy this NFT"),
		Description: firstNonEmpty(cfg.Description, "Purchase the NFT directly from its owner."),
		Custom: &types.LinkedAction{
			Type:  types.ActionTypePost,
			Label: "Get Blinks",
			Href:  nftPath + "?action=list&amount={amount}&mintAddress={mintAddress}",
			Parameters: []types.ActionParameter{
				{Name: "mintAddress", Label: "NFT mint address", Required: true},
				{Name: "amount", Label: "Listing price in SOL", Type: "number", Required: true},
			},
		},
	}

	owner, errOwner := types.TryPubkeyFromBase58(cfg.Owner)
	mint, errMint := types.TryPubkeyFromBase58(cfg.MintAddress)
	if errOwner != nil || errMint != nil {
		dc.Disabled = true
		return BuildDiscovery(dc), nil
	}
	dc.Presets = AmountLinks(amountsOr(cfg.Amounts, defaultNftAmounts), "SOL", func(a string) string {
		return nftPath + "?" + buyQuery(mint, owner, a).Encode()
	})
	return BuildDiscovery(dc), nil
}

// Execute 按 action 参数分发，缺省为 buy
func (l *NftLogic) Execute(req *types.NftRequest) (interface{}, error) {
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "", nftActionBuy:
		return l.Buy(req)
	case nftActionList:
		return l.List(req)
	default:
		return nil, Validation("Invalid action")
	}
}

// List 卖家为自己持有的 NFT 生成购买 blink，不产生交易
func (l *NftLogic) List(req *types.NftRequest) (*types.ListResponse, error) {
	seller, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}
	cfg, err := l.displayConfig(store.TemplateBlink)
	if err != nil {
		return nil, err
	}
	mint, err := parsePubkey("mintAddress", firstNonEmpty(req.MintAddress, cfg.MintAddress))
	if err != nil {
		return nil, err
	}
	lamports, err := parseLamports(req.Amount)
	if err != nil {
		return nil, err
	}

	if err := l.checkSeller(seller, mint); err != nil {
		return nil, err
	}

	amount := strings.TrimSpace(req.Amount)
	link, err := l.putListing(seller, mint, lamports, amount)
	if err != nil {
		return nil, err
	}
	l.publish(&mq.ActionEvent{Kind: KindNftList, Payer: seller, Asset: mint, Lamports: lamports})

	return &types.ListResponse{
		Success:  true,
		BlinkURL: link,
		Message:  fmt.Sprintf("NFT listed for sale at %s SOL", amount),
	}, nil
}

// checkSeller 挂单前校验卖家持有该 NFT，配置要求时还需是 creator
func (l *logic) checkSeller(seller, mint types.Pubkey) error {
	if !l.svcCtx.Verifier.VerifyHolds(l.ctx, seller, mint) {
		return Eligibility(msgNotHolder)
	}
	if l.svcCtx.Config.Actions.Nft.RequireCreatorMatch && !l.svcCtx.Verifier.VerifyCreator(l.ctx, seller, mint) {
		return Eligibility(msgNotCreator)
	}
	return nil
}

// putListing 保存挂单并返回买入 blink
func (l *logic) putListing(seller, mint types.Pubkey, lamports uint64, amount string) (string, error) {
	err := l.svcCtx.Stores.Listings.PutListing(l.ctx, &store.Listing{
		Mint:          mint,
		Seller:        seller,
		PriceLamports: lamports,
		CreatedAt:     time.Now().Unix(),
	})
	if err != nil {
		return "", Network(err)
	}
	logger.Infof("[Action] listing saved, mint=%s, seller=%s, lamports=%d", mint, seller, lamports)
	return l.blinkURL(nftPath, buyQuery(mint, seller, amount)), nil
}

// Buy 买家付款给卖家，卖家 ATA 转出 1 个单位到买家 ATA。
// 卖家持有校验在构建任何指令之前完成。
func (l *NftLogic) Buy(req *types.NftRequest) (*types.TransactionResponse, error) {
	buyer, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}
	cfg, err := l.displayConfig(store.TemplateBlink)
	if err != nil {
		return nil, err
	}
	seller, err := parsePubkey("seller", firstNonEmpty(req.Seller, req.Owner, cfg.Owner))
	if err != nil {
		return nil, err
	}
	mint, err := parsePubkey("mintAddress", firstNonEmpty(req.MintAddress, cfg.MintAddress))
	if err != nil {
		return nil, err
	}
	lamports, err := l.price(req.Amount, mint, seller)
	if err != nil {
		return nil, err
	}

	if buyer == seller {
		return nil, Eligibility(msgBuyOwnNft)
	}
	if !l.svcCtx.Verifier.VerifyHolds(l.ctx, seller, mint) {
		// 卖家已转走 NFT，旧挂单作废
		if err := l.svcCtx.Stores.Listings.DeleteListing(l.ctx, mint, seller); err != nil {
			logger.Warnf("[Action] delete stale listing failed, mint=%s, seller=%s, err=%v", mint, seller, err)
		}
		return nil, Eligibility(msgSellerNotHolder)
	}

	sellerATA, err := builder.AssociatedAccount(seller, mint)
	if err != nil {
		return nil, Network(err)
	}
	buyerATA, err := builder.AssociatedAccount(buyer, mint)
	if err != nil {
		return nil, Network(err)
	}

	var steps []builder.Step
	if l.svcCtx.Config.Actions.Nft.CreateBuyerAta {
		createIx, _, err := builder.CreateAssociatedAccount(buyer, buyer, mint)
		if err != nil {
			return nil, Network(err)
		}
		steps = append(steps, builder.Setup(createIx))
	}
	steps = append(steps,
		builder.Payment(builder.Transfer(buyer, seller, lamports)),
		builder.Asset(builder.TokenTransfer(sellerATA, buyerATA, seller, mint, consts.NftAmount, consts.NftDecimals)),
	)

	resp, _, err := l.assemble(KindNft, buyer, steps, mq.ActionEvent{
		Counterparty: seller,
		Asset:        mint,
		Lamports:     lamports,
	})
	return resp, err
}

// price 有挂单时以挂单价格为准，请求金额只能与之相同；
// 没有挂单时使用请求金额
func (l *NftLogic) price(amount string, mint, seller types.Pubkey) (uint64, error) {
	listing, ok, err := l.svcCtx.Stores.Listings.GetListing(l.ctx, mint, seller)
	if err != nil {
		return 0, Network(err)
	}
	if !ok {
		return parseLamports(amount)
	}
	if strings.TrimSpace(amount) == "" {
		return listing.PriceLamports, nil
	}
	lamports, err := parseLamports(amount)
	if err != nil {
		return 0, err
	}
	if lamports != listing.PriceLamports {
		return 0, Validation(msgPriceMismatch)
	}
	return lamports, nil
}
