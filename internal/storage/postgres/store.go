package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bondingCurve/internal/model"
)

// Schema creates the tables used by Store.
const Schema = `
CREATE TABLE IF NOT EXISTS pool_events (
	pool_id      TEXT        NOT NULL,
	seq          BIGINT      NOT NULL,
	event_id     UUID        NOT NULL,
	pool_address TEXT        NOT NULL,
	name         TEXT        NOT NULL,
	event_ts     TIMESTAMPTZ NOT NULL,
	payload      JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pool_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_pool_events_name ON pool_events(pool_id, name);

CREATE TABLE IF NOT EXISTS pool_state (
	pool_id               TEXT        PRIMARY KEY,
	pool_address          TEXT        NOT NULL,
	reserve_asset         TEXT        NOT NULL,
	token                 TEXT        NOT NULL,
	reserve               NUMERIC     NOT NULL,
	supply                NUMERIC     NOT NULL,
	protocol_fees_accrued NUMERIC     NOT NULL,
	spot_price            NUMERIC     NOT NULL,
	crr_ppm               INTEGER     NOT NULL,
	trade_fee_bps         INTEGER     NOT NULL,
	protocol_fee_bps      INTEGER     NOT NULL,
	max_trade_bps         INTEGER     NOT NULL,
	paused                BOOLEAN     NOT NULL,
	ibr_end               TIMESTAMPTZ NOT NULL,
	last_seq              BIGINT      NOT NULL,
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pool_window_metrics (
	pool_id             TEXT        NOT NULL,
	window_size_seconds BIGINT      NOT NULL,
	window_start_ts     TIMESTAMPTZ NOT NULL,
	window_end_ts       TIMESTAMPTZ NOT NULL,
	trade_count         BIGINT      NOT NULL,
	buy_count           BIGINT      NOT NULL,
	sell_count          BIGINT      NOT NULL,
	reserve_volume      NUMERIC     NOT NULL,
	token_volume        NUMERIC     NOT NULL,
	fees                NUMERIC     NOT NULL,
	protocol_fees       NUMERIC     NOT NULL,
	open_spot_price     NUMERIC     NOT NULL,
	close_spot_price    NUMERIC     NOT NULL,
	close_reserve       NUMERIC     NOT NULL,
	close_supply        NUMERIC     NOT NULL,
	fee_rate            NUMERIC,
	apr                 NUMERIC,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pool_id, window_size_seconds, window_start_ts)
);
`

// Store provides Postgres persistence for pool events, state and metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Publish inserts event records. Replayed sequence numbers are ignored so
// retries are idempotent.
func (s *Store) Publish(ctx context.Context, records []model.EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range records {
		payload, err := json.Marshal(rec.Data)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", rec.Name, err)
		}
		batch.Queue(`
			INSERT INTO pool_events (
				pool_id, seq, event_id, pool_address, name, event_ts, payload
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (pool_id, seq) DO NOTHING
		`,
			rec.Pool,
			int64(rec.Seq),
			rec.ID,
			rec.Address,
			rec.Name,
			time.Unix(rec.Timestamp, 0).UTC(),
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPoolStates inserts or updates the latest committed pool state.
// Older sequence numbers never overwrite newer ones.
func (s *Store) UpsertPoolStates(ctx context.Context, states []model.PoolState) error {
	if len(states) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range states {
		batch.Queue(`
			INSERT INTO pool_state (
				pool_id, pool_address, reserve_asset, token, reserve, supply, protocol_fees_accrued, spot_price,
				crr_ppm, trade_fee_bps, protocol_fee_bps, max_trade_bps, paused, ibr_end, last_seq, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				reserve = EXCLUDED.reserve,
				supply = EXCLUDED.supply,
				protocol_fees_accrued = EXCLUDED.protocol_fees_accrued,
				spot_price = EXCLUDED.spot_price,
				crr_ppm = EXCLUDED.crr_ppm,
				trade_fee_bps = EXCLUDED.trade_fee_bps,
				protocol_fee_bps = EXCLUDED.protocol_fee_bps,
				max_trade_bps = EXCLUDED.max_trade_bps,
				paused = EXCLUDED.paused,
				last_seq = EXCLUDED.last_seq,
				updated_at = now()
			WHERE pool_state.last_seq <= EXCLUDED.last_seq
		`,
			st.Pool,
			st.Address,
			st.ReserveAsset,
			st.Token,
			st.Reserve,
			st.Supply,
			st.ProtocolFeesAccrued,
			st.SpotPrice,
			int32(st.CRRPpm),
			int32(st.TradeFeeBps),
			int32(st.ProtocolFeeBps),
			int32(st.MaxTradeBps),
			st.Paused,
			st.IBREnd.UTC(),
			int64(st.LastSeq),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range states {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO pool_window_metrics (
				pool_id, window_size_seconds, window_start_ts, window_end_ts,
				trade_count, buy_count, sell_count, reserve_volume, token_volume, fees, protocol_fees,
				open_spot_price, close_spot_price, close_reserve, close_supply, fee_rate, apr, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,now(),now())
			ON CONFLICT (pool_id, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				trade_count = EXCLUDED.trade_count,
				buy_count = EXCLUDED.buy_count,
				sell_count = EXCLUDED.sell_count,
				reserve_volume = EXCLUDED.reserve_volume,
				token_volume = EXCLUDED.token_volume,
				fees = EXCLUDED.fees,
				protocol_fees = EXCLUDED.protocol_fees,
				open_spot_price = EXCLUDED.open_spot_price,
				close_spot_price = EXCLUDED.close_spot_price,
				close_reserve = EXCLUDED.close_reserve,
				close_supply = EXCLUDED.close_supply,
				fee_rate = EXCLUDED.fee_rate,
				apr = EXCLUDED.apr,
				updated_at = now()
		`,
			m.Pool,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.TradeCount),
			int64(m.BuyCount),
			int64(m.SellCount),
			m.ReserveVolume,
			m.TokenVolume,
			m.Fees,
			m.ProtocolFees,
			m.OpenSpotPrice,
			m.CloseSpotPrice,
			m.CloseReserve,
			m.CloseSupply,
			m.FeeRate,
			m.APR,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LastSeq returns the highest stored sequence number for a pool.
func (s *Store) LastSeq(ctx context.Context, poolID string) (uint64, bool, error) {
	if poolID == "" {
		return 0, false, fmt.Errorf("pool id required")
	}
	var seq *int64
	row := s.pool.QueryRow(ctx, `SELECT max(seq) FROM pool_events WHERE pool_id=$1`, poolID)
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if seq == nil {
		return 0, false, nil
	}
	return uint64(*seq), true, nil
}
