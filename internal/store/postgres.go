package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blink-builder-sol/internal/types"
	"blink-builder-sol/pkg/logger"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore 关系型持久化实现。
// 唯一性交给数据库约束与条件更新，不在应用层先查后写。
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// ConnectPostgres 打开连接并等待数据库就绪（最多重试 5 次）
func ConnectPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	for i := 1; i <= 5; i++ {
		if err = db.PingContext(ctx); err == nil {
			return db, nil
		}
		logger.Warnf("[Store] waiting for postgres (%d/5): %v", i, err)
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	_ = db.Close()
	return nil, fmt.Errorf("ping postgres: %w", err)
}

// EnsureSchema 建表（幂等）
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) Voters(ctx context.Context, candidate, title string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT voter FROM blink_votes WHERE candidate = $1 AND title = $2 ORDER BY id`,
		candidate, title)
	if err != nil {
		return nil, fmt.Errorf("query voters error: %w", err)
	}
	defer rows.Close()

	var voters []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan voter error: %w", err)
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

// AddVoter 依赖 UNIQUE(candidate, title, voter)，冲突时不插入
func (p *PostgresStore) AddVoter(ctx context.Context, candidate, title, voter string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		INSERT INTO blink_votes (candidate, title, voter)
		VALUES ($1, $2, $3)
		ON CONFLICT (candidate, title, voter) DO NOTHING`,
		candidate, title, voter)
	if err != nil {
		return false, fmt.Errorf("insert vote error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert vote rows affected: %w", err)
	}
	return n == 1, nil
}

func (p *PostgresStore) PutListing(ctx context.Context, l *Listing) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO blink_listings (mint, seller, price_lamports, counterparty, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, CURRENT_TIMESTAMP)
		ON CONFLICT (mint, seller) DO UPDATE SET
			price_lamports = EXCLUDED.price_lamports,
			counterparty = EXCLUDED.counterparty,
			updated_at = CURRENT_TIMESTAMP`,
		l.Mint.String(), l.Seller.String(), int64(l.PriceLamports), nullablePubkey(l.Counterparty), l.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert listing %s/%s failed: %w", l.Mint, l.Seller, err)
	}
	return nil
}

func (p *PostgresStore) GetListing(ctx context.Context, mint, seller types.Pubkey) (*Listing, bool, error) {
	var (
		price        int64
		counterparty sql.NullString
		createdAt    int64
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT price_lamports, counterparty, created_at
		FROM blink_listings WHERE mint = $1 AND seller = $2`,
		mint.String(), seller.String()).Scan(&price, &counterparty, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query listing error: %w", err)
	}

	l := &Listing{Mint: mint, Seller: seller, PriceLamports: uint64(price), CreatedAt: createdAt}
	if counterparty.Valid {
		if l.Counterparty, err = types.TryPubkeyFromBase58(counterparty.String); err != nil {
			return nil, false, fmt.Errorf("listing has bad counterparty: %w", err)
		}
	}
	return l, true, nil
}

func (p *PostgresStore) DeleteListing(ctx context.Context, mint, seller types.Pubkey) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM blink_listings WHERE mint = $1 AND seller = $2`,
		mint.String(), seller.String())
	if err != nil {
		return fmt.Errorf("delete listing error: %w", err)
	}
	return nil
}

func (p *PostgresStore) CreateWager(ctx context.Context, w *Wager) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO blink_wagers (id, creator, series, side, amount, lamports, bet_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		w.ID, w.Creator.String(), w.Series, w.Side, w.Amount, int64(w.Lamports), w.Time, w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert wager %s failed: %w", w.ID, err)
	}
	return nil
}

func (p *PostgresStore) GetWager(ctx context.Context, id string) (*Wager, error) {
	var (
		creator    string
		lamports   int64
		challenger sql.NullString
	)
	w := &Wager{ID: id}
	err := p.db.QueryRowContext(ctx, `
		SELECT creator, series, side, amount, lamports, bet_time, challenger, created_at
		FROM blink_wagers WHERE id = $1`, id).
		Scan(&creator, &w.Series, &w.Side, &w.Amount, &lamports, &w.Time, &challenger, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query wager error: %w", err)
	}

	if w.Creator, err = types.TryPubkeyFromBase58(creator); err != nil {
		return nil, fmt.Errorf("wager %s has bad creator: %w", id, err)
	}
	w.Lamports = uint64(lamports)
	if challenger.Valid {
		if w.Challenger, err = types.TryPubkeyFromBase58(challenger.String); err != nil {
			return nil, fmt.Errorf("wager %s has bad challenger: %w", id, err)
		}
	}
	return w, nil
}

// SetChallenger 条件更新：只有 challenger 为空的行会被改写
func (p *PostgresStore) SetChallenger(ctx context.Context, id string, challenger types.Pubkey) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE blink_wagers SET challenger = $2 WHERE id = $1 AND challenger IS NULL`,
		id, challenger.String())
	if err != nil {
		return false, fmt.Errorf("update challenger error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update challenger rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	// 未更新：区分记录不存在与已被占用
	var dummy int
	err = p.db.QueryRowContext(ctx, `SELECT 1 FROM blink_wagers WHERE id = $1`, id).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("check wager exists error: %w", err)
	}
	return false, nil
}

func (p *PostgresStore) GetConfig(ctx context.Context, template string) (*DisplayConfig, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT body FROM blink_configs WHERE template = $1`, template).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query config error: %w", err)
	}
	var cfg DisplayConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", template, err)
	}
	return &cfg, nil
}

func (p *PostgresStore) SaveConfig(ctx context.Context, template string, cfg *DisplayConfig) error {
	body, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config %s: %w", template, err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO blink_configs (template, body, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (template) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = CURRENT_TIMESTAMP`,
		template, body)
	if err != nil {
		return fmt.Errorf("upsert config %s failed: %w", template, err)
	}
	return nil
}

func nullablePubkey(p types.Pubkey) sql.NullString {
	if p.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: p.String(), Valid: true}
}
