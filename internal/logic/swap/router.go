package swap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"blink-builder-sol/internal/chain"
	"blink-builder-sol/internal/logic/assembler"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"

	"github.com/zeromicro/go-zero/rest/httpc"
)

var ErrPayerMissing = errors.New("payer is not the fee payer of swap transaction")

const (
	DefaultBaseURL     = "https://quote-api.jup.ag/v6"
	DefaultSlippageBps = 50
	maxErrorBody       = 512
)

// QuoteRequest GET /quote 的查询参数
type QuoteRequest struct {
	InputMint   string `form:"inputMint"`
	OutputMint  string `form:"outputMint"`
	Amount      uint64 `form:"amount"`
	SlippageBps int    `form:"slippageBps"`
}

type swapRequest struct {
	QuoteResponse       json.RawMessage `json:"quoteResponse"`
	UserPublicKey       string          `json:"userPublicKey"`
	WrapAndUnwrapSol    bool            `json:"wrapAndUnwrapSol"`
	AsLegacyTransaction bool            `json:"asLegacyTransaction"`
	Config              swapConfig      `json:"config"`
}

type swapConfig struct {
	MaxSupportedTransactionVersion int    `json:"maxSupportedTransactionVersion"`
	RecentBlockhash                string `json:"recentBlockhash"`
	LastValidBlockHeight           uint64 `json:"lastValidBlockHeight"`
}

type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// Router 外部流动性路由（Jupiter v6）客户端。
// 报价与路由都交给路由方，本地只校验付款人并重新序列化。
type Router struct {
	baseURL     string
	slippageBps int
	timeout     time.Duration
}

func NewRouter(baseURL string, slippageBps int, timeout time.Duration) *Router {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if slippageBps <= 0 {
		slippageBps = DefaultSlippageBps
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Router{
		baseURL:     strings.TrimRight(baseURL, "/"),
		slippageBps: slippageBps,
		timeout:     timeout,
	}
}

// Quote 返回原始报价 JSON，原样传给 BuildSwap
func (r *Router) Quote(ctx context.Context, req QuoteRequest) (json.RawMessage, error) {
	if req.SlippageBps <= 0 {
		req.SlippageBps = r.slippageBps
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	resp, err := httpc.Do(ctx, http.MethodGet, r.baseURL+"/quote", req)
	if err != nil {
		return nil, fmt.Errorf("%w: quote: %v", chain.ErrNetwork, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: quote: %v", chain.ErrNetwork, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: quote: invalid json response", chain.ErrNetwork)
	}
	logger.Debugf("[Swap] quote ok, in=%s, out=%s, amount=%d, cost=%v",
		req.InputMint, req.OutputMint, req.Amount, time.Since(start))
	return body, nil
}

// BuildSwap 用报价请求路由方生成 v0 交易（带上本地拿到的 blockhash），返回 base64 交易
func (r *Router) BuildSwap(ctx context.Context, quote json.RawMessage, payer types.Pubkey, ref chain.BlockReference) (string, error) {
	payload, err := json.Marshal(swapRequest{
		QuoteResponse:    quote,
		UserPublicKey:    payer.String(),
		WrapAndUnwrapSol: true,
		Config: swapConfig{
			RecentBlockhash:      ref.Blockhash,
			LastValidBlockHeight: ref.ExpiryHeight,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/swap", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpc.DoRequest(req)
	if err != nil {
		return "", fmt.Errorf("%w: swap: %v", chain.ErrNetwork, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return "", fmt.Errorf("%w: swap: %v", chain.ErrNetwork, err)
	}

	var out swapResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode swap response: %v", chain.ErrNetwork, err)
	}
	if out.SwapTransaction == "" {
		return "", fmt.Errorf("%w: swap response has no transaction", chain.ErrNetwork)
	}
	return out.SwapTransaction, nil
}

// Rewrap 解码路由方返回的交易，确认 payer 是手续费支付方（静态账户表首位）后重新序列化
func Rewrap(envelope string, payer types.Pubkey) (string, error) {
	tx, err := assembler.Decode(envelope)
	if err != nil {
		return "", err
	}
	keys := tx.Message.Accounts
	if len(keys) == 0 || types.FromCommon(keys[0]) != payer {
		return "", ErrPayerMissing
	}
	return assembler.Reencode(tx)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
	}
	return body, nil
}
