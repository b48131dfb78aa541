package action

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"blink-builder-sol/internal/config"
	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/logic/verifier"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
)

const (
	votePath = "/api/actions/vote"

	defaultVoteTitle     = "University Election"
	defaultCandidateName = "Charles"

	msgSelfVote     = "You cannot vote for yourself."
	msgAlreadyVoted = "You have already voted."
	msgVoteOnly     = "This process won't initiate any SOL transactions. It's solely for verification purposes."
)

type VoteLogic struct {
	logic
}

func NewVoteLogic(ctx context.Context, svcCtx *svc.ServiceContext) *VoteLogic {
	return &VoteLogic{logic: newLogic(ctx, svcCtx)}
}

func (l *VoteLogic) transactionMode() bool {
	return l.svcCtx.Config.Actions.Vote.Mode == config.VoteModeTransaction
}

func (l *VoteLogic) Describe() (*types.ActionGetResponse, error) {
	cfg, err := l.displayConfig(store.TemplateVote)
	if err != nil {
		return nil, err
	}
	name := firstNonEmpty(cfg.Name, defaultCandidateName)

	linkType := types.ActionTypeMessage
	if l.transactionMode() {
		linkType = types.ActionTypeTransaction
	}

	return BuildDiscovery(DiscoveryConfig{
		Icon:        l.absoluteURL(firstNonEmpty(cfg.Icon, "/votePerson.jpg")),
		Label:       "Vote Now",
		Title:       firstNonEmpty(cfg.Title, defaultVoteTitle),
		Description: firstNonEmpty(cfg.Description, "Vote for your favorite candidate in the university election."),
		Presets: []types.LinkedAction{{
			Type:  linkType,
			Label: "Vote for " + name,
			Href:  votePath + "?candidate=" + url.QueryEscape(name),
		}},
	}), nil
}

// Execute 先做自投校验，再通过存储层 compare-and-set 记录投票。
// message 模式只返回消息；transaction 模式额外构建自转账 + memo 交易。
func (l *VoteLogic) Execute(req *types.VoteRequest) (interface{}, error) {
	candidate := strings.TrimSpace(req.Candidate)
	if candidate == "" {
		return nil, Validation("Missing required fields.")
	}
	voter, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}

	cfg, err := l.displayConfig(store.TemplateVote)
	if err != nil {
		return nil, err
	}
	if cfg.PublicKey == "" {
		return nil, Network(errors.New("candidate public key is not configured"))
	}
	candidateKey, err := types.TryPubkeyFromBase58(cfg.PublicKey)
	if err != nil {
		return nil, Network(err)
	}

	if !verifier.VerifyNotSelf(candidateKey, voter) {
		return nil, Eligibility(msgSelfVote)
	}

	title := firstNonEmpty(cfg.Title, defaultVoteTitle)
	if !l.transactionMode() {
		if err := l.record(candidateKey, title, voter); err != nil {
			return nil, err
		}
		l.publish(&mq.ActionEvent{Kind: KindVote, Payer: voter, Counterparty: candidateKey})
		return &types.MessageResponse{Type: types.ActionTypeMessage, Data: msgVoteOnly}, nil
	}

	// 先组装再记票：取 blockhash 失败时不留下投票记录，用户可以重试
	lamports := l.svcCtx.Config.Actions.Vote.Lamports
	env, err := l.svcCtx.Assembler.Assemble(l.ctx, voter, []builder.Step{
		builder.Payment(builder.Transfer(voter, voter, lamports)),
		builder.Note(builder.Memo(voter, fmt.Sprintf("vote:%s:%s", title, candidate))),
	})
	if err != nil {
		return nil, err
	}
	if err := l.record(candidateKey, title, voter); err != nil {
		return nil, err
	}
	resp := l.respond(KindVote, voter, env, mq.ActionEvent{Counterparty: candidateKey, Lamports: lamports})
	resp.Message = "Vote recorded for " + candidate
	return resp, nil
}

// record 存储层 compare-and-set，同一 voter 只能记一次
func (l *VoteLogic) record(candidate types.Pubkey, title string, voter types.Pubkey) error {
	added, err := l.svcCtx.Stores.Votes.AddVoter(l.ctx, candidate.String(), title, voter.String())
	if err != nil {
		return Network(err)
	}
	if !added {
		return Eligibility(msgAlreadyVoted)
	}
	return nil
}
