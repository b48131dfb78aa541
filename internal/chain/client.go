package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blink-builder-sol/internal/tools"
	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/rpc"
)

// ErrNetwork RPC 不可达、超时或返回异常，调用方统一按 500 处理，不做重试
var ErrNetwork = errors.New("chain rpc unavailable")

const defaultTimeout = 5 * time.Second

// RPC 是 Client 依赖的最小 JSON-RPC 能力集合，由 sdkRPC 适配 *client.Client
type RPC interface {
	GetLatestBlockhash(ctx context.Context) (rpc.GetLatestBlockhashValue, error)
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
	GetSignatureStatus(ctx context.Context, signature string) (*rpc.SignatureStatus, error)
	GetBlockHeight(ctx context.Context) (uint64, error)
}

// BlockReference 近期 blockhash 及其失效高度
type BlockReference struct {
	Blockhash    string
	ExpiryHeight uint64
}

// ConfirmStatus 交易确认状态（仅作参考，不影响请求返回）
type ConfirmStatus int

const (
	ConfirmPending ConfirmStatus = iota
	ConfirmConfirmed
	ConfirmExpired
	ConfirmFailed
)

func (s ConfirmStatus) String() string {
	switch s {
	case ConfirmConfirmed:
		return "confirmed"
	case ConfirmExpired:
		return "expired"
	case ConfirmFailed:
		return "failed"
	default:
		return "pending"
	}
}

func (s ConfirmStatus) Terminal() bool {
	return s != ConfirmPending
}

type Client struct {
	rpc     RPC
	timeout time.Duration
}

// NewClient 基于 endpoint 创建 blocto RPC 客户端
func NewClient(endpoint string, timeout time.Duration) (*Client, error) {
	c := client.NewClient(endpoint)
	if c == nil {
		return nil, errors.New("rpc client init failed")
	}
	return NewClientWithRPC(sdkRPC{c}, timeout), nil
}

// sdkRPC 补齐 *client.Client 未封装的 getBlockHeight
type sdkRPC struct {
	*client.Client
}

func (s sdkRPC) GetBlockHeight(ctx context.Context) (uint64, error) {
	resp, err := s.RpcClient.GetBlockHeight(ctx)
	if err != nil {
		return 0, err
	}
	if resp.Error != nil {
		return 0, resp.Error
	}
	return resp.Result, nil
}

func NewClientWithRPC(r RPC, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{rpc: r, timeout: timeout}
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// BlockReference 每次实时拉取，blockhash 会过期，禁止缓存
func (c *Client) BlockReference(ctx context.Context) (BlockReference, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	v, err := c.rpc.GetLatestBlockhash(ctx)
	if err != nil {
		return BlockReference{}, fmt.Errorf("%w: getLatestBlockhash: %v", ErrNetwork, err)
	}
	if v.Blockhash == "" {
		return BlockReference{}, fmt.Errorf("%w: getLatestBlockhash returned empty blockhash", ErrNetwork)
	}
	logger.Debugf("[Chain] getLatestBlockhash ok, blockhash=%s, expiry=%d, cost=%v",
		v.Blockhash, v.LatestValidBlockHeight, time.Since(start))

	return BlockReference{
		Blockhash:    v.Blockhash,
		ExpiryHeight: v.LatestValidBlockHeight,
	}, nil
}

// AccountData 读取账户原始数据；账户不存在时返回 (nil, nil)
func (c *Client) AccountData(ctx context.Context, addr types.Pubkey) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	info, err := c.rpc.GetAccountInfo(ctx, addr.String())
	if err != nil {
		return nil, fmt.Errorf("%w: getAccountInfo %s: %v", ErrNetwork, addr, err)
	}
	if len(info.Data) == 0 {
		return nil, nil
	}
	return info.Data, nil
}

// TokenBalance 读取 SPL token account 余额。
// found=false 表示账户不存在或不是 token account。
func (c *Client) TokenBalance(ctx context.Context, tokenAccount types.Pubkey) (amount uint64, found bool, err error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	info, err := c.rpc.GetAccountInfo(ctx, tokenAccount.String())
	if err != nil {
		return 0, false, fmt.Errorf("%w: getAccountInfo %s: %v", ErrNetwork, tokenAccount, err)
	}
	if len(info.Data) == 0 || !tools.OwnedByTokenProgram(types.FromCommon(info.Owner)) {
		return 0, false, nil
	}

	acc, err := token.TokenAccountFromData(info.Data)
	if err != nil {
		return 0, false, nil
	}
	return acc.Amount, true, nil
}

// Confirm 单次查询签名状态
func (c *Client) Confirm(ctx context.Context, signature string, ref BlockReference) (ConfirmStatus, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	status, err := c.rpc.GetSignatureStatus(ctx, signature)
	if err != nil {
		return ConfirmPending, fmt.Errorf("%w: getSignatureStatus: %v", ErrNetwork, err)
	}
	if status != nil {
		if status.Err != nil {
			return ConfirmFailed, nil
		}
		if status.ConfirmationStatus != nil {
			switch *status.ConfirmationStatus {
			case rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
				return ConfirmConfirmed, nil
			}
		}
		return ConfirmPending, nil
	}

	// 未查到签名：当前高度超过 lastValidBlockHeight 即视为过期
	height, err := c.rpc.GetBlockHeight(ctx)
	if err != nil {
		return ConfirmPending, fmt.Errorf("%w: getBlockHeight: %v", ErrNetwork, err)
	}
	if height > ref.ExpiryHeight {
		return ConfirmExpired, nil
	}
	return ConfirmPending, nil
}

// WatchConfirmation 后台轮询直到终态或 ctx 取消，结果写入返回的 channel 后关闭。
// 由调用方持有并负责取消，服务端请求路径不会使用。
func (c *Client) WatchConfirmation(ctx context.Context, signature string, ref BlockReference, interval time.Duration) <-chan ConfirmStatus {
	out := make(chan ConfirmStatus, 1)
	if interval <= 0 {
		interval = 2 * time.Second
	}

	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			status, err := c.Confirm(ctx, signature, ref)
			if err != nil {
				logger.Warnf("[Chain] confirm poll failed, sig=%s, err=%v", signature, err)
			} else if status.Terminal() {
				out <- status
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}
