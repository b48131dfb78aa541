package action

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"blink-builder-sol/internal/chain"
	"blink-builder-sol/internal/config"
	"blink-builder-sol/internal/consts"
	"blink-builder-sol/internal/logic/assembler"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/logic/metadata"
	"blink-builder-sol/internal/logic/swap"
	"blink-builder-sol/internal/logic/verifier"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = types.PubkeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
	bob   = types.PubkeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	carol = consts.BONKMint // 任意合法地址
	mint  = types.PubkeyFromBase58("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")

	hashA = consts.JUPMintStr
	hashB = consts.WIFMintStr
)

type fakeRPC struct {
	mu     sync.Mutex
	hashes []string
	calls  int
	down   bool // 模拟节点不可达
}

func (f *fakeRPC) GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return rpc.GetLatestBlockhashValue{}, errors.New("connection refused")
	}
	h := f.hashes[f.calls%len(f.hashes)]
	f.calls++
	return rpc.GetLatestBlockhashValue{Blockhash: h, LatestValidBlockHeight: uint64(500 + f.calls)}, nil
}

func (f *fakeRPC) GetAccountInfo(ctx context.Context, addr string) (client.AccountInfo, error) {
	return client.AccountInfo{}, nil
}

func (f *fakeRPC) GetSignatureStatus(ctx context.Context, sig string) (*rpc.SignatureStatus, error) {
	return nil, nil
}

func (f *fakeRPC) GetBlockHeight(ctx context.Context) (uint64, error) {
	return 0, nil
}

func (f *fakeRPC) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func (f *fakeRPC) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeBalances 以 ATA 为 key 的余额表
type fakeBalances map[types.Pubkey]uint64

func (b fakeBalances) TokenBalance(ctx context.Context, ata types.Pubkey) (uint64, bool, error) {
	v, ok := b[ata]
	return v, ok, nil
}

func (b fakeBalances) hold(t *testing.T, owner, m types.Pubkey, amount uint64) {
	ata, err := builder.AssociatedAccount(owner, m)
	require.NoError(t, err)
	b[ata] = amount
}

type fakeMeta struct {
	md  *metadata.Metadata
	err error
}

func (f *fakeMeta) Resolve(ctx context.Context, m types.Pubkey) (*metadata.Metadata, error) {
	return f.md, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.ActionEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, e *mq.ActionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *e)
	return p.err
}

func (p *recordingPublisher) Close() {}

type env struct {
	svcCtx    *svc.ServiceContext
	rpc       *fakeRPC
	balances  fakeBalances
	meta      *fakeMeta
	publisher *recordingPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	r := &fakeRPC{hashes: []string{hashA, hashB}}
	chainClient := chain.NewClientWithRPC(r, time.Second)
	balances := fakeBalances{}
	meta := &fakeMeta{err: metadata.ErrNotFound}
	pub := &recordingPublisher{}

	var c config.Config
	c.PublicBaseURL = "https://blink.test"
	c.Actions.Vote.Mode = config.VoteModeMessage

	return &env{
		svcCtx: &svc.ServiceContext{
			Config:    c,
			Chain:     chainClient,
			Assembler: assembler.New(chainClient),
			Verifier:  verifier.New(balances, meta),
			Metadata:  meta,
			Router:    swap.NewRouter("", 0, 0),
			Stores:    store.NewMemoryStores(),
			Publisher: pub,
		},
		rpc:       r,
		balances:  balances,
		meta:      meta,
		publisher: pub,
	}
}

func (e *env) saveConfig(t *testing.T, template string, cfg store.DisplayConfig) {
	require.NoError(t, e.svcCtx.Stores.Configs.SaveConfig(context.Background(), template, &cfg))
}

func kindOf(err error) Kind {
	return Classify(err).Kind
}

func decodeIxs(t *testing.T, envelope string) ([]string, [][]byte) {
	t.Helper()
	tx, err := assembler.Decode(envelope)
	require.NoError(t, err)
	ixs, err := assembler.Instructions(tx)
	require.NoError(t, err)
	var programs []string
	var data [][]byte
	for _, ix := range ixs {
		programs = append(programs, ix.ProgramID.ToBase58())
		data = append(data, ix.Data)
	}
	return programs, data
}

func TestDonateSingleTransfer(t *testing.T) {
	e := newEnv(t)
	e.saveConfig(t, store.TemplateDonate, store.DisplayConfig{Title: "Donate", Description: "d", PublicKey: bob.String()})

	resp, err := NewDonateLogic(context.Background(), e.svcCtx).Execute(&types.DonateRequest{Amount: "0.05", Account: alice.String()})
	require.NoError(t, err)
	assert.Equal(t, types.ActionTypeTransaction, resp.Type)

	tx, err := assembler.Decode(resp.Transaction)
	require.NoError(t, err)
	assert.Equal(t, hashA, tx.Message.RecentBlockHash)
	ixs, err := assembler.Instructions(tx)
	require.NoError(t, err)
	require.Len(t, ixs, 1)
	assert.Equal(t, consts.SystemProgram.ToCommon(), ixs[0].ProgramID)
	assert.Equal(t, alice.ToCommon(), ixs[0].Accounts[0])
	assert.Equal(t, bob.ToCommon(), ixs[0].Accounts[1])
	assert.Equal(t, uint64(50_000_000), binary.LittleEndian.Uint64(ixs[0].Data[4:12]))

	again, err := assembler.Reencode(tx)
	require.NoError(t, err)
	assert.Equal(t, resp.Transaction, again)

	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, KindDonate, e.publisher.events[0].Kind)
	assert.Equal(t, hashA, e.publisher.events[0].Blockhash)
}

func TestDonateUsesMostRecentBlockhash(t *testing.T) {
	e := newEnv(t)
	e.saveConfig(t, store.TemplateDonate, store.DisplayConfig{Title: "Donate", Description: "d", PublicKey: bob.String()})
	l := NewDonateLogic(context.Background(), e.svcCtx)

	_, err := l.Execute(&types.DonateRequest{Amount: "0.05", Account: alice.String()})
	require.NoError(t, err)
	resp, err := l.Execute(&types.DonateRequest{Amount: "0.05", Account: alice.String()})
	require.NoError(t, err)

	tx, err := assembler.Decode(resp.Transaction)
	require.NoError(t, err)
	assert.Equal(t, hashB, tx.Message.RecentBlockHash)
	assert.Equal(t, 2, e.rpc.fetches())
}

func TestDonateRejectsBadInput(t *testing.T) {
	e := newEnv(t)
	l := NewDonateLogic(context.Background(), e.svcCtx)

	_, err := l.Execute(&types.DonateRequest{Amount: "0", Account: alice.String()})
	assert.Equal(t, KindValidation, kindOf(err))
	assert.Equal(t, "Invalid amount", Classify(err).Message)

	_, err = l.Execute(&types.DonateRequest{Amount: "0.1", Account: "nope"})
	assert.Equal(t, KindValidation, kindOf(err))

	// 未配置收款地址
	_, err = l.Execute(&types.DonateRequest{Amount: "0.1", Account: alice.String()})
	assert.Equal(t, KindNetwork, kindOf(err))
	assert.Equal(t, 0, e.rpc.fetches())
}

func TestDescribeIsDeterministic(t *testing.T) {
	e := newEnv(t)
	e.saveConfig(t, store.TemplateDonate, store.DisplayConfig{Title: "Help", Description: "d", Amounts: []string{"1", "2"}})
	l := NewDonateLogic(context.Background(), e.svcCtx)

	d1, err := l.Describe()
	require.NoError(t, err)
	d2, err := l.Describe()
	require.NoError(t, err)

	b1, _ := json.Marshal(d1)
	b2, _ := json.Marshal(d2)
	assert.Equal(t, string(b1), string(b2))

	require.Len(t, d1.Links.Actions, 3)
	assert.Equal(t, "1 SOL", d1.Links.Actions[0].Label)
	assert.Equal(t, "/api/actions/donate?amount=1", d1.Links.Actions[0].Href)
	assert.Equal(t, "/api/actions/donate?amount={amount}", d1.Links.Actions[2].Href)
	assert.Equal(t, "https://blink.test/solana-pic.png", d1.Icon)
}

func TestVoteOncePerVoter(t *testing.T) {
	e := newEnv(t)
	e.saveConfig(t, store.TemplateVote, store.DisplayConfig{Title: "Election", Description: "d", Name: "Charles", PublicKey: bob.String()})
	l := NewVoteLogic(context.Background(), e.svcCtx)

	resp, err := l.Execute(&types.VoteRequest{Candidate: "Charles", Account: alice.String()})
	require.NoError(t, err)
	msg, ok := resp.(*types.MessageResponse)
	require.True(t, ok)
	assert.Equal(t, types.ActionTypeMessage, msg.Type)

	_, err = l.Execute(&types.VoteRequest{Candidate: "Charles", Account: alice.String()})
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, "You have already voted.", Classify(err).Message)

	_, err = l.Execute(&types.VoteRequest{Candidate: "Charles", Account: carol.String()})
	require.NoError(t, err)

	voters, err := e.svcCtx.Stores.Votes.Voters(context.Background(), bob.String(), "Election")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.String(), carol.String()}, voters)
	assert.Equal(t, 0, e.rpc.fetches())
}

func TestSelfVoteLeavesStoreUntouched(t *testing.T) {
	e := newEnv(t)
	e.saveConfig(t, store.TemplateVote, store.DisplayConfig{Title: "Election", Description: "d", PublicKey: bob.String()})

	_, err := NewVoteLogic(context.Background(), e.svcCtx).Execute(&types.VoteRequest{Candidate: "Charles", Account: bob.String()})
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, "You cannot vote for yourself.", Classify(err).Message)

	voters, err := e.svcCtx.Stores.Votes.Voters(context.Background(), bob.String(), "Election")
	require.NoError(t, err)
	assert.Empty(t, voters)
	assert.Empty(t, e.publisher.events)
}

func TestVoteTransactionMode(t *testing.T) {
	e := newEnv(t)
	e.svcCtx.Config.Actions.Vote.Mode = config.VoteModeTransaction
	e.saveConfig(t, store.TemplateVote, store.DisplayConfig{Title: "Election", Description: "d", PublicKey: bob.String()})
	l := NewVoteLogic(context.Background(), e.svcCtx)

	d, err := l.Describe()
	require.NoError(t, err)
	require.Len(t, d.Links.Actions, 1)
	assert.Equal(t, types.ActionTypeTransaction, d.Links.Actions[0].Type)
	assert.Equal(t, "Vote for Charles", d.Links.Actions[0].Label)
	assert.Equal(t, "/api/actions/vote?candidate=Charles", d.Links.Actions[0].Href)

	resp, err := l.Execute(&types.VoteRequest{Candidate: "Charles", Account: alice.String()})
	require.NoError(t, err)
	txResp, ok := resp.(*types.TransactionResponse)
	require.True(t, ok)

	programs, data := decodeIxs(t, txResp.Transaction)
	assert.Equal(t, []string{consts.SystemProgramStr, consts.MemoProgramStr}, programs)
	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(data[0][4:12]))
	assert.Equal(t, "vote:Election:Charles", string(data[1]))
}

func TestVoteTransactionModeRetryAfterNetworkError(t *testing.T) {
	e := newEnv(t)
	e.svcCtx.Config.Actions.Vote.Mode = config.VoteModeTransaction
	e.saveConfig(t, store.TemplateVote, store.DisplayConfig{Title: "Election", Description: "d", PublicKey: bob.String()})
	l := NewVoteLogic(context.Background(), e.svcCtx)
	req := &types.VoteRequest{Candidate: "Charles", Account: alice.String()}

	e.rpc.setDown(true)
	_, err := l.Execute(req)
	assert.Equal(t, KindNetwork, kindOf(err))
	voters, err := e.svcCtx.Stores.Votes.Voters(context.Background(), bob.String(), "Election")
	require.NoError(t, err)
	assert.Empty(t, voters)
	assert.Empty(t, e.publisher.events)

	e.rpc.setDown(false)
	_, err = l.Execute(req)
	require.NoError(t, err)
	_, err = l.Execute(req)
	assert.Equal(t, msgAlreadyVoted, Classify(err).Message)
	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, KindVote, e.publisher.events[0].Kind)
}

func TestNftBuy(t *testing.T) {
	e := newEnv(t)
	e.balances.hold(t, bob, mint, 1)
	req := &types.NftRequest{Amount: "2", Seller: bob.String(), MintAddress: mint.String(), Account: alice.String()}

	resp, err := NewNftLogic(context.Background(), e.svcCtx).Execute(req)
	require.NoError(t, err)
	txResp := resp.(*types.TransactionResponse)

	tx, err := assembler.Decode(txResp.Transaction)
	require.NoError(t, err)
	assert.Len(t, tx.Signatures, 2)

	ixs, err := assembler.Instructions(tx)
	require.NoError(t, err)
	require.Len(t, ixs, 2)
	assert.Equal(t, consts.SystemProgram.ToCommon(), ixs[0].ProgramID)
	assert.Equal(t, alice.ToCommon(), ixs[0].Accounts[0])
	assert.Equal(t, bob.ToCommon(), ixs[0].Accounts[1])
	assert.Equal(t, uint64(2_000_000_000), binary.LittleEndian.Uint64(ixs[0].Data[4:12]))

	sellerATA, _ := builder.AssociatedAccount(bob, mint)
	buyerATA, _ := builder.AssociatedAccount(alice, mint)
	assert.Equal(t, consts.TokenProgram.ToCommon(), ixs[1].ProgramID)
	assert.Equal(t, sellerATA.ToCommon(), ixs[1].Accounts[0])
	assert.Equal(t, mint.ToCommon(), ixs[1].Accounts[1])
	assert.Equal(t, buyerATA.ToCommon(), ixs[1].Accounts[2])
	assert.Equal(t, bob.ToCommon(), ixs[1].Accounts[3])
	assert.Equal(t, uint64(1), binary.LittleEndian.Uint64(ixs[1].Data[1:9]))
}

func TestNftBuyCreatesBuyerAccount(t *testing.T) {
	e := newEnv(t)
	e.svcCtx.Config.Actions.Nft.CreateBuyerAta = true
	e.balances.hold(t, bob, mint, 1)

	resp, err := NewNftLogic(context.Background(), e.svcCtx).Buy(&types.NftRequest{
		Amount: "1", Seller: bob.String(), MintAddress: mint.String(), Account: alice.String(),
	})
	require.NoError(t, err)

	programs, _ := decodeIxs(t, resp.Transaction)
	assert.Equal(t, []string{consts.AssociatedTokenProgramStr, consts.SystemProgramStr, consts.TokenProgramStr}, programs)
}

func TestNftBuyRequiresSellerHolding(t *testing.T) {
	e := newEnv(t)
	l := NewNftLogic(context.Background(), e.svcCtx)
	req := &types.NftRequest{Amount: "2", Seller: bob.String(), MintAddress: mint.String(), Account: alice.String()}

	// 没有 token account
	_, err := l.Execute(req)
	assert.Equal(t, KindEligibility, kindOf(err))

	e.balances.hold(t, bob, mint, 0)
	_, err = l.Execute(req)
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, msgSellerNotHolder, Classify(err).Message)

	assert.Equal(t, 0, e.rpc.fetches(), "no transaction is assembled")
	assert.Empty(t, e.publisher.events)
}

func TestNftBuyRejectsOwnListing(t *testing.T) {
	e := newEnv(t)
	e.balances.hold(t, bob, mint, 1)

	_, err := NewNftLogic(context.Background(), e.svcCtx).Execute(&types.NftRequest{
		Amount: "2", Seller: bob.String(), MintAddress: mint.String(), Account: bob.String(),
	})
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, msgBuyOwnNft, Classify(err).Message)
}

func TestNftListThenBuyAtListingPrice(t *testing.T) {
	e := newEnv(t)
	l := NewNftLogic(context.Background(), e.svcCtx)
	listReq := &types.NftRequest{Action: "list", Amount: "1.5", MintAddress: mint.String(), Account: bob.String()}

	_, err := l.Execute(listReq)
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, msgNotHolder, Classify(err).Message)

	e.balances.hold(t, bob, mint, 1)
	resp, err := l.Execute(listReq)
	require.NoError(t, err)
	list := resp.(*types.ListResponse)
	assert.True(t, list.Success)
	assert.True(t, strings.HasPrefix(list.BlinkURL, "https://dial.to/?action=solana-action%3Ahttps%3A%2F%2Fblink.test%2Fapi%2Factions%2Fnft"))
	assert.Equal(t, "NFT listed for sale at 1.5 SOL", list.Message)

	listing, ok, err := e.svcCtx.Stores.Listings.GetListing(context.Background(), mint, bob)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(1_500_000_000), listing.PriceLamports)

	buy, err := l.Buy(&types.NftRequest{Seller: bob.String(), MintAddress: mint.String(), Account: alice.String()})
	require.NoError(t, err)
	_, data := decodeIxs(t, buy.Transaction)
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(data[0][4:12]))
}

func TestNftBuyMustPayListingPrice(t *testing.T) {
	e := newEnv(t)
	e.balances.hold(t, bob, mint, 1)
	l := NewNftLogic(context.Background(), e.svcCtx)

	_, err := l.List(&types.NftRequest{Action: "list", Amount: "1.5", MintAddress: mint.String(), Account: bob.String()})
	require.NoError(t, err)

	_, err = l.Buy(&types.NftRequest{Amount: "0.000000001", Seller: bob.String(), MintAddress: mint.String(), Account: alice.String()})
	assert.Equal(t, KindValidation, kindOf(err))
	assert.Equal(t, msgPriceMismatch, Classify(err).Message)
	assert.Equal(t, 0, e.rpc.fetches())

	buy, err := l.Buy(&types.NftRequest{Amount: "1.5", Seller: bob.String(), MintAddress: mint.String(), Account: alice.String()})
	require.NoError(t, err)
	_, data := decodeIxs(t, buy.Transaction)
	require.Len(t, data, 2)
	assert.Equal(t, uint64(1_500_000_000), binary.LittleEndian.Uint64(data[0][4:12]))
}

func TestNftBuyWithoutListingOrAmount(t *testing.T) {
	e := newEnv(t)
	e.balances.hold(t, bob, mint, 1)

	_, err := NewNftLogic(context.Background(), e.svcCtx).Buy(&types.NftRequest{Seller: bob.String(), MintAddress: mint.String(), Account: alice.String()})
	assert.Equal(t, KindValidation, kindOf(err))
}

func TestNftListRequiresCreatorWhenConfigured(t *testing.T) {
	e := newEnv(t)
	e.svcCtx.Config.Actions.Nft.RequireCreatorMatch = true
	e.balances.hold(t, bob, mint, 1)
	l := NewNftLogic(context.Background(), e.svcCtx)
	req := &types.NftRequest{Action: "list", Amount: "1", MintAddress: mint.String(), Account: bob.String()}

	_, err := l.List(req)
	assert.Equal(t, msgNotCreator, Classify(err).Message)

	e.meta.err = nil
	e.meta.md = &metadata.Metadata{Mint: mint, Creators: []metadata.Creator{{Address: bob, Verified: true, Share: 100}}}
	_, err = l.List(req)
	assert.NoError(t, err)
}

func TestNftDescribeDisabledWithoutOwner(t *testing.T) {
	e := newEnv(t)
	l := NewNftLogic(context.Background(), e.svcCtx)

	d, err := l.Describe()
	require.NoError(t, err)
	assert.True(t, d.Disabled)

	e.saveConfig(t, store.TemplateBlink, store.DisplayConfig{Title: "t", Description: "d", Owner: bob.String(), MintAddress: mint.String(), Amounts: []string{"3"}})
	d, err = l.Describe()
	require.NoError(t, err)
	assert.False(t, d.Disabled)
	require.Len(t, d.Links.Actions, 2)
	assert.Contains(t, d.Links.Actions[0].Href, "seller="+bob.String())
	assert.Equal(t, types.ActionTypePost, d.Links.Actions[1].Type)
}

func TestTemplateNft(t *testing.T) {
	e := newEnv(t)
	l := NewTemplateNftLogic(context.Background(), e.svcCtx)
	query := &types.TemplateNftQuery{MintAddress: mint.String(), Seller: bob.String(), Price: "0.5"}

	d, err := l.Describe(query)
	require.NoError(t, err)
	assert.Equal(t, "Buy NFT", d.Title)

	e.meta.err = nil
	e.meta.md = &metadata.Metadata{Name: "Mad Lad #1"}
	d, err = l.Describe(query)
	require.NoError(t, err)
	assert.Equal(t, "Buy Mad Lad #1", d.Title)
	assert.Equal(t, "Buy for 0.5 SOL", d.Links.Actions[0].Label)

	_, err = l.Describe(&types.TemplateNftQuery{MintAddress: "bad", Seller: bob.String(), Price: "0.5"})
	assert.Equal(t, KindValidation, kindOf(err))

	_, err = l.Execute(&types.TemplateNftApproveRequest{MintAddress: mint.String(), Seller: bob.String(), Price: "0.5"})
	assert.Equal(t, KindValidation, kindOf(err))

	e.balances.hold(t, bob, mint, 1)
	resp, err := l.Execute(&types.TemplateNftApproveRequest{MintAddress: mint.String(), Seller: bob.String(), Price: "0.5", Approve: true})
	require.NoError(t, err)
	assert.Equal(t, "NFT listed for sale at 0.5 SOL", resp.Message)
	_, ok, err := e.svcCtx.Stores.Listings.GetListing(context.Background(), mint, bob)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTemplateNftApproveCannotRepriceListing(t *testing.T) {
	e := newEnv(t)
	e.balances.hold(t, bob, mint, 1)
	_, err := NewNftLogic(context.Background(), e.svcCtx).List(&types.NftRequest{
		Action: "list", Amount: "5", MintAddress: mint.String(), Account: bob.String(),
	})
	require.NoError(t, err)
	l := NewTemplateNftLogic(context.Background(), e.svcCtx)
	approve := func(seller types.Pubkey, price string) error {
		_, err := l.Execute(&types.TemplateNftApproveRequest{MintAddress: mint.String(), Seller: seller.String(), Price: price, Approve: true})
		return err
	}

	// carol 不持有
	err = approve(carol, "0.000000001")
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, msgNotHolder, Classify(err).Message)

	err = approve(bob, "0.000000001")
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, msgListingExists, Classify(err).Message)

	assert.NoError(t, approve(bob, "5"))

	e.balances.hold(t, bob, mint, 0)
	assert.Equal(t, KindEligibility, kindOf(approve(bob, "5")))

	listing, ok, err := e.svcCtx.Stores.Listings.GetListing(context.Background(), mint, bob)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(5_000_000_000), listing.PriceLamports)
}

func TestTemplateNftApproveRequiresCreatorWhenConfigured(t *testing.T) {
	e := newEnv(t)
	e.svcCtx.Config.Actions.Nft.RequireCreatorMatch = true
	e.balances.hold(t, bob, mint, 1)
	l := NewTemplateNftLogic(context.Background(), e.svcCtx)
	req := &types.TemplateNftApproveRequest{MintAddress: mint.String(), Seller: bob.String(), Price: "1", Approve: true}

	_, err := l.Execute(req)
	assert.Equal(t, msgNotCreator, Classify(err).Message)

	e.meta.err = nil
	e.meta.md = &metadata.Metadata{Mint: mint, Creators: []metadata.Creator{{Address: bob, Verified: true, Share: 100}}}
	_, err = l.Execute(req)
	assert.NoError(t, err)
}

func TestWagerFlow(t *testing.T) {
	e := newEnv(t)
	l := NewWagerLogic(context.Background(), e.svcCtx)

	_, err := l.Create(&types.WagerCreateRequest{Account: alice.String(), Creator: bob.String(), Series: "Knicks vs Celtics"})
	assert.Equal(t, KindValidation, kindOf(err))

	created, err := l.Create(&types.WagerCreateRequest{
		Account: alice.String(), Creator: bob.String(), Series: "Knicks vs Celtics", Amount: "0.1", Side: "Knicks",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(created.BlinkURL, "/api/actions/wager?bet="))
	id := strings.TrimPrefix(created.BlinkURL, "/api/actions/wager?bet=")

	d, err := l.Describe(&types.WagerQuery{Bet: id})
	require.NoError(t, err)
	assert.Equal(t, "Bet 0.1 SOL on Celtics", d.Links.Actions[0].Label)
	assert.Equal(t, "/api/actions/wager/join?bet="+id, d.Links.Actions[0].Href)
	assert.Equal(t, teamLogos["Celtics"], d.Icon)

	_, err = l.Join(&types.WagerJoinRequest{Bet: id, Account: bob.String()})
	assert.Equal(t, KindEligibility, kindOf(err))

	joined, err := l.Join(&types.WagerJoinRequest{Bet: id, Account: carol.String()})
	require.NoError(t, err)
	_, data := decodeIxs(t, joined.Transaction)
	assert.Equal(t, uint64(100_000_000), binary.LittleEndian.Uint64(data[0][4:12]))

	_, err = l.Join(&types.WagerJoinRequest{Bet: id, Account: alice.String()})
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, msgBetTaken, Classify(err).Message)

	d, err = l.Describe(&types.WagerQuery{Bet: id})
	require.NoError(t, err)
	assert.True(t, d.Disabled)
}

func TestWagerUnknownBet(t *testing.T) {
	l := NewWagerLogic(context.Background(), newEnv(t).svcCtx)

	_, err := l.Describe(&types.WagerQuery{Bet: "missing"})
	assert.Equal(t, KindNotFound, kindOf(err))
	assert.Equal(t, msgBetNotFound, Classify(err).Message)

	_, err = l.Join(&types.WagerJoinRequest{Bet: "", Account: alice.String()})
	assert.Equal(t, KindNotFound, kindOf(err))
}

func TestOppositeSide(t *testing.T) {
	assert.Equal(t, "Celtics", oppositeSide("Knicks vs Celtics", "Knicks"))
	assert.Equal(t, "Knicks", oppositeSide("Knicks vs Celtics", "Celtics"))
	assert.Equal(t, "Other", oppositeSide("Knicks", "Knicks"))
}

func newSwapServer(t *testing.T, txPayer *types.Pubkey) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quote":
			assert.Equal(t, "500000000", r.URL.Query().Get("amount"))
			assert.Equal(t, consts.WSOLMintStr, r.URL.Query().Get("inputMint"))
			_, _ = w.Write([]byte(`{"outAmount":"42"}`))
		case "/swap":
			var body struct {
				UserPublicKey string `json:"userPublicKey"`
				Config        struct {
					RecentBlockhash string `json:"recentBlockhash"`
				} `json:"config"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			payer := types.PubkeyFromBase58(body.UserPublicKey)
			if txPayer != nil {
				payer = *txPayer
			}
			raw, err := assembler.Compile(payer, []builder.Step{
				builder.Payment(builder.Transfer(payer, bob, 1)),
			}, chain.BlockReference{Blockhash: body.Config.RecentBlockhash})
			require.NoError(t, err)
			_ = json.NewEncoder(w).Encode(map[string]string{"swapTransaction": base64.StdEncoding.EncodeToString(raw)})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestSwap(t *testing.T) {
	e := newEnv(t)
	srv := newSwapServer(t, nil)
	defer srv.Close()
	e.svcCtx.Router = swap.NewRouter(srv.URL, 0, time.Second)

	resp, err := NewSwapLogic(context.Background(), e.svcCtx).Execute(&types.SwapRequest{
		Amount: "0.5", InputMint: consts.WSOLMintStr, OutputMint: consts.JUPMintStr, Account: alice.String(),
	})
	require.NoError(t, err)

	tx, err := assembler.Decode(resp.Transaction)
	require.NoError(t, err)
	assert.Equal(t, hashA, tx.Message.RecentBlockHash)
	assert.Equal(t, alice.ToCommon(), tx.Message.Accounts[0])
	assert.NotEmpty(t, resp.BlinkURL)
	require.Len(t, e.publisher.events, 1)
	assert.Equal(t, consts.JUPMint, e.publisher.events[0].Asset)
}

func TestSwapRejectsForeignPayer(t *testing.T) {
	e := newEnv(t)
	srv := newSwapServer(t, &bob)
	defer srv.Close()
	e.svcCtx.Router = swap.NewRouter(srv.URL, 0, time.Second)

	_, err := NewSwapLogic(context.Background(), e.svcCtx).Execute(&types.SwapRequest{
		Amount: "0.5", InputMint: consts.WSOLMintStr, OutputMint: consts.JUPMintStr, Account: alice.String(),
	})
	assert.ErrorIs(t, err, swap.ErrPayerMissing)
	assert.Equal(t, KindValidation, kindOf(err))
	assert.Empty(t, e.publisher.events)
}

func TestSwapRequiresTokenBalance(t *testing.T) {
	e := newEnv(t)
	l := NewSwapLogic(context.Background(), e.svcCtx)
	req := &types.SwapRequest{Amount: "2", InputMint: consts.JUPMintStr, OutputMint: consts.WSOLMintStr, Account: alice.String()}

	e.balances.hold(t, alice, consts.JUPMint, 1_000_000)
	_, err := l.Execute(req)
	assert.Equal(t, KindEligibility, kindOf(err))
	assert.Equal(t, "Insufficient JUP balance", Classify(err).Message)
	assert.Equal(t, 0, e.rpc.fetches())
}

func TestNftBuyDropsStaleListing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.svcCtx.Stores.Listings.PutListing(ctx, &store.Listing{Mint: mint, Seller: bob, PriceLamports: 1}))

	_, err := NewNftLogic(ctx, e.svcCtx).Buy(&types.NftRequest{Seller: bob.String(), MintAddress: mint.String(), Account: alice.String()})
	assert.Equal(t, KindEligibility, kindOf(err))

	_, ok, err := e.svcCtx.Stores.Listings.GetListing(ctx, mint, bob)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSwapUnsupportedPair(t *testing.T) {
	l := NewSwapLogic(context.Background(), newEnv(t).svcCtx)

	_, err := l.Describe(&types.SwapQuery{InputMint: mint.String(), OutputMint: consts.JUPMintStr})
	assert.Equal(t, KindValidation, kindOf(err))

	_, err = l.Describe(&types.SwapQuery{InputMint: consts.JUPMintStr, OutputMint: consts.JUPMintStr})
	assert.Equal(t, KindValidation, kindOf(err))

	d, err := l.Describe(&types.SwapQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Swap SOL for JUP", d.Title)
}

func TestDisplayConfigSave(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := NewDisplayConfigLogic(ctx, e.svcCtx, "unknown").Get()
	assert.Equal(t, KindNotFound, kindOf(err))

	l := NewDisplayConfigLogic(ctx, e.svcCtx, store.TemplateDonate)
	_, err = l.Save(&types.DisplayConfigRequest{Description: "d"})
	assert.Equal(t, KindValidation, kindOf(err))
	_, err = l.Save(&types.DisplayConfigRequest{Title: "t", Description: "d", PublicKey: "xyz"})
	assert.Equal(t, KindValidation, kindOf(err))
	_, err = l.Save(&types.DisplayConfigRequest{Title: "t", Description: "d", Amounts: []string{"-1"}})
	assert.Equal(t, KindValidation, kindOf(err))

	_, err = l.Save(&types.DisplayConfigRequest{Title: " Help ", Description: "d", PublicKey: bob.String(), Amounts: []string{"0.2"}})
	require.NoError(t, err)
	got, err := l.Get()
	require.NoError(t, err)
	assert.Equal(t, "Help", got.Title)
	assert.Equal(t, []string{"0.2"}, got.Amounts)
}

func TestDisplayConfigReportsFirstInvalidField(t *testing.T) {
	e := newEnv(t)
	l := NewDisplayConfigLogic(context.Background(), e.svcCtx, store.TemplateBlink)
	req := &types.DisplayConfigRequest{Title: "t", Description: "d", PublicKey: "bad", Owner: "bad", MintAddress: "bad"}

	for i := 0; i < 20; i++ {
		_, err := l.Save(req)
		assert.Equal(t, "Invalid publicKey", Classify(err).Message)
	}

	req.PublicKey = ""
	_, err := l.Save(req)
	assert.Equal(t, "Invalid owner", Classify(err).Message)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, KindValidation, kindOf(builder.ErrInvalidAmount))
	assert.Equal(t, KindNotFound, kindOf(store.ErrNotFound))

	netErr := Classify(errors.Join(chain.ErrNetwork, errors.New("dial tcp: refused")))
	assert.Equal(t, KindNetwork, netErr.Kind)
	assert.Equal(t, internalMessage, netErr.Message)
	assert.Equal(t, http.StatusInternalServerError, netErr.Kind.Status())

	custom := &Error{Kind: KindNetwork, Message: "leaky detail"}
	assert.Equal(t, internalMessage, Classify(custom).Message)
	assert.Equal(t, "leaky detail", custom.Message)

	assert.Equal(t, http.StatusForbidden, Eligibility("x").Kind.Status())
	assert.Equal(t, http.StatusBadRequest, Validation("x").Kind.Status())
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	e := newEnv(t)
	e.publisher.err = errors.New("broker down")
	e.saveConfig(t, store.TemplateDonate, store.DisplayConfig{Title: "Donate", Description: "d", PublicKey: bob.String()})

	_, err := NewDonateLogic(context.Background(), e.svcCtx).Execute(&types.DonateRequest{Amount: "1", Account: alice.String()})
	assert.NoError(t, err)
}
