package action

import (
	"context"
	"fmt"
	"strings"

	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"
)

const templateNftPath = "/api/actions/template-nft"

// TemplateNftLogic 由卖家自助生成的 NFT 出售模板：GET 预览，POST approve 后落库
type TemplateNftLogic struct {
	logic
}

func NewTemplateNftLogic(ctx context.Context, svcCtx *svc.ServiceContext) *TemplateNftLogic {
	return &TemplateNftLogic{logic: newLogic(ctx, svcCtx)}
}

type templateListing struct {
	mint     types.Pubkey
	seller   types.Pubkey
	price    string
	lamports uint64
}

func parseTemplateListing(mintAddress, seller, price string) (*templateListing, error) {
	mint, err := parsePubkey("mintAddress", mintAddress)
	if err != nil {
		return nil, err
	}
	sellerKey, err := parsePubkey("seller", seller)
	if err != nil {
		return nil, err
	}
	lamports, err := parseLamports(price)
	if err != nil {
		return nil, err
	}
	return &templateListing{
		mint:     mint,
		seller:   sellerKey,
		price:    strings.TrimSpace(price),
		lamports: lamports,
	}, nil
}

func (l *TemplateNftLogic) Describe(req *types.TemplateNftQuery) (*types.ActionGetResponse, error) {
	t, err := parseTemplateListing(req.MintAddress, req.Seller, req.Price)
	if err != nil {
		return nil, err
	}

	// 元数据只用于展示，读取失败时退回默认标题
	name := "NFT"
	if md, err := l.svcCtx.Metadata.Resolve(l.ctx, t.mint); err != nil {
		logger.Warnf("[Action] resolve metadata failed, mint=%s, err=%v", t.mint, err)
	} else if md.Name != "" {
		name = md.Name
	}

	buy := nftPath + "?" + buyQuery(t.mint, t.seller, t.price).Encode()
	offer := buyQuery(t.mint, t.seller, "")
	offer.Del("amount")
	return BuildDiscovery(DiscoveryConfig{
		Icon:        l.absoluteURL(""),
		Label:       "Buy NFT",
		Title:       firstNonEmpty(req.Title, "Buy "+name),
		Description: firstNonEmpty(req.Description, fmt.Sprintf("Buy %s for %s SOL.", name, t.price)),
		Presets: []types.LinkedAction{{
			Type:  types.ActionTypeTransaction,
			Label: fmt.Sprintf("Buy for %s SOL", t.price),
			Href:  buy,
		}},
		Custom: CustomAmountLink("Make an offer", nftPath+"?"+offer.Encode()+"&amount={amount}", "amount", "Offer in SOL"),
	}), nil
}

// Execute 只有 approve=true 时才保存挂单
func (l *TemplateNftLogic) Execute(req *types.TemplateNftApproveRequest) (*types.ListResponse, error) {
	if !req.Approve {
		return nil, Validation("Listing is not approved")
	}
	t, err := parseTemplateListing(req.MintAddress, req.Seller, req.Price)
	if err != nil {
		return nil, err
	}
	if err := l.checkSeller(t.seller, t.mint); err != nil {
		return nil, err
	}
	// approve 不带签名者身份，已有挂单只允许以相同价格重复确认
	existing, ok, err := l.svcCtx.Stores.Listings.GetListing(l.ctx, t.mint, t.seller)
	if err != nil {
		return nil, Network(err)
	}
	if ok && existing.PriceLamports != t.lamports {
		return nil, Eligibility(msgListingExists)
	}

	link, err := l.putListing(t.seller, t.mint, t.lamports, t.price)
	if err != nil {
		return nil, err
	}
	l.publish(&mq.ActionEvent{Kind: KindTemplateNft, Payer: t.seller, Asset: t.mint, Lamports: t.lamports})

	return &types.ListResponse{
		Success:  true,
		BlinkURL: link,
		Message:  fmt.Sprintf("NFT listed for sale at %s SOL", t.price),
	}, nil
}
