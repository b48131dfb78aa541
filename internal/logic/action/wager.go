package action

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"blink-builder-sol/internal/logic/builder"
	"blink-builder-sol/internal/mq"
	"blink-builder-sol/internal/store"
	"blink-builder-sol/internal/svc"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"

	"github.com/google/uuid"
)

const (
	wagerPath     = "/api/actions/wager"
	wagerJoinPath = "/api/actions/wager/join"

	msgBetNotFound  = "Bet not found"
	msgBetTaken     = "Bet already taken"
	msgBetOwnWager  = "You cannot take your own bet."
	seriesSeparator = " vs "
	defaultTeamLogo = "https://upload.wikimedia.org/wikipedia/en/2/25/Los_Angeles_Lakers_logo.svg"
)

var teamLogos = map[string]string{
	"Knicks":       "https://upload.wikimedia.org/wikipedia/en/2/25/New_York_Knicks_logo.svg",
	"Celtics":      "https://upload.wikimedia.org/wikipedia/en/8/8f/Boston_Celtics.svg",
	"Warriors":     "https://upload.wikimedia.org/wikipedia/en/0/01/Golden_State_Warriors_logo.svg",
	"Timberwolves": "https://upload.wikimedia.org/wikipedia/en/c/c2/Minnesota_Timberwolves_logo.svg",
}

type WagerLogic struct {
	logic
}

func NewWagerLogic(ctx context.Context, svcCtx *svc.ServiceContext) *WagerLogic {
	return &WagerLogic{logic: newLogic(ctx, svcCtx)}
}

// oppositeSide series 形如 "Knicks vs Celtics"，返回另一方
func oppositeSide(series, side string) string {
	for _, team := range strings.Split(series, seriesSeparator) {
		team = strings.TrimSpace(team)
		if team != "" && team != side {
			return team
		}
	}
	return "Other"
}

func (l *WagerLogic) lookup(id string) (*store.Wager, error) {
	if strings.TrimSpace(id) == "" {
		return nil, NotFound(msgBetNotFound)
	}
	w, err := l.svcCtx.Stores.Wagers.GetWager(l.ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound(msgBetNotFound)
	}
	if err != nil {
		return nil, Network(err)
	}
	return w, nil
}

// Create 创建对赌并由 account 向 creator 支付赌注
func (l *WagerLogic) Create(req *types.WagerCreateRequest) (*types.TransactionResponse, error) {
	series := strings.TrimSpace(req.Series)
	side := strings.TrimSpace(req.Side)
	if req.Creator == "" || series == "" || req.Amount == "" || side == "" || req.Account == "" {
		return nil, Validation("Missing fields")
	}
	payer, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}
	creator, err := parsePubkey("creator", req.Creator)
	if err != nil {
		return nil, err
	}
	lamports, err := parseLamports(req.Amount)
	if err != nil {
		return nil, err
	}

	w := &store.Wager{
		ID:        uuid.NewString(),
		Creator:   creator,
		Series:    series,
		Side:      side,
		Amount:    strings.TrimSpace(req.Amount),
		Lamports:  lamports,
		Time:      req.Time,
		CreatedAt: time.Now().Unix(),
	}
	if err := l.svcCtx.Stores.Wagers.CreateWager(l.ctx, w); err != nil {
		return nil, Network(err)
	}
	logger.Infof("[Action] wager created, id=%s, creator=%s, series=%s, side=%s", w.ID, creator, series, side)

	resp, _, err := l.assemble(KindWager, payer, []builder.Step{
		builder.Payment(builder.Transfer(payer, creator, lamports)),
	}, mq.ActionEvent{Counterparty: creator, Lamports: lamports})
	if err != nil {
		return nil, err
	}
	resp.BlinkURL = wagerPath + "?bet=" + url.QueryEscape(w.ID)
	return resp, nil
}

func (l *WagerLogic) Describe(req *types.WagerQuery) (*types.ActionGetResponse, error) {
	w, err := l.lookup(req.Bet)
	if err != nil {
		return nil, err
	}

	opposite := oppositeSide(w.Series, w.Side)
	icon, ok := teamLogos[opposite]
	if !ok {
		icon = defaultTeamLogo
	}
	description := fmt.Sprintf("• Match: %s\n• Creator: %s (picked: %s)\n• You are betting on: %s\n• Amount: %s SOL\n• Time: %s",
		w.Series, w.Creator, w.Side, opposite, w.Amount, firstNonEmpty(w.Time, "N/A"))

	return BuildDiscovery(DiscoveryConfig{
		Icon:        icon,
		Label:       "Bet: " + w.Series,
		Title:       "NBA Playoff Bet",
		Description: description,
		Disabled:    w.Taken(),
		Presets: []types.LinkedAction{{
			Type:  types.ActionTypeTransaction,
			Label: fmt.Sprintf("Bet %s SOL on %s", w.Amount, opposite),
			Href:  wagerJoinPath + "?bet=" + url.QueryEscape(w.ID),
		}},
	}), nil
}

// Join 应战：challenger 写入是 compare-and-set，只有第一个人能成功
func (l *WagerLogic) Join(req *types.WagerJoinRequest) (*types.TransactionResponse, error) {
	w, err := l.lookup(req.Bet)
	if err != nil {
		return nil, err
	}
	challenger, err := parseAccount(req.Account)
	if err != nil {
		return nil, err
	}
	if challenger == w.Creator {
		return nil, Eligibility(msgBetOwnWager)
	}

	ok, err := l.svcCtx.Stores.Wagers.SetChallenger(l.ctx, w.ID, challenger)
	if errors.Is(err, store.ErrNotFound) {
		return nil, NotFound(msgBetNotFound)
	}
	if err != nil {
		return nil, Network(err)
	}
	if !ok {
		return nil, Eligibility(msgBetTaken)
	}
	logger.Infof("[Action] wager joined, id=%s, challenger=%s", w.ID, challenger)

	resp, _, err := l.assemble(KindWagerJoin, challenger, []builder.Step{
		builder.Payment(builder.Transfer(challenger, w.Creator, w.Lamports)),
	}, mq.ActionEvent{Counterparty: w.Creator, Lamports: w.Lamports})
	if err != nil {
		return nil, err
	}
	resp.Message = fmt.Sprintf("Bet %s SOL on %s", w.Amount, oppositeSide(w.Series, w.Side))
	return resp, nil
}
