package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"FloorSentinel/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS opportunities (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			collection_id   TEXT,
			collection_name TEXT,
			token_id        TEXT,
			seller          TEXT,
			floor_price     REAL,
			listing_price   REAL,
			discount        REAL,
			rarity          REAL,
			source          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_ts ON opportunities(timestamp)`,

		`CREATE TABLE IF NOT EXISTS purchases (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			collection_id   TEXT,
			collection_name TEXT,
			token_id        TEXT,
			price_eth       REAL,
			floor_price     REAL,
			discount        REAL,
			tx_hash         TEXT,
			gas_cost_eth    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_purchases_ts ON purchases(timestamp)`,

		`CREATE TABLE IF NOT EXISTS sweep_ticks (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id        TEXT,
			timestamp     INTEGER NOT NULL,
			duration_ms   INTEGER,
			opportunities INTEGER,
			skips         INTEGER,
			purchases     INTEGER,
			spent         REAL,
			total_spent   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sweep_ticks_ts ON sweep_ticks(timestamp)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordOpportunity(opp *model.Opportunity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rarity any
	if opp.Rarity != nil {
		rarity = *opp.Rarity
	}
	_, err := r.db.Exec(`INSERT INTO opportunities
		(timestamp, collection_id, collection_name, token_id, seller, floor_price, listing_price, discount, rarity, source)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), opp.CollectionID, opp.CollectionName, opp.TokenID, opp.Seller,
		opp.FloorPrice, opp.ListingPrice, opp.Discount, rarity, opp.Source,
	)
	return err
}

func (r *SQLiteRecorder) RecordPurchase(receipt *model.PurchaseReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO purchases
		(timestamp, collection_id, collection_name, token_id, price_eth, floor_price, discount, tx_hash, gas_cost_eth)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		receipt.PurchasedAt.Unix(), receipt.CollectionID, receipt.CollectionName, receipt.TokenID,
		receipt.PriceETH, receipt.FloorPrice, receipt.Discount, receipt.TxHash, receipt.GasCostETH,
	)
	return err
}

func (r *SQLiteRecorder) RecordTick(tick *TickRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO sweep_ticks
		(run_id, timestamp, duration_ms, opportunities, skips, purchases, spent, total_spent)
		VALUES (?,?,?,?,?,?,?,?)`,
		tick.RunID, tick.StartedAt.Unix(), tick.Duration.Milliseconds(),
		tick.Opportunities, tick.Skips, tick.Purchases, tick.Spent, tick.TotalSpent,
	)
	return err
}

func (r *SQLiteRecorder) Summarize(since time.Time) (*Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Summary{}
	cutoff := since.Unix()

	row := r.db.QueryRow(`SELECT COUNT(*), COALESCE(AVG(discount), 0) FROM opportunities WHERE timestamp >= ?`, cutoff)
	if err := row.Scan(&s.Opportunities, &s.AvgDiscount); err != nil {
		return nil, fmt.Errorf("summarize opportunities: %w", err)
	}

	row = r.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(price_eth), 0) FROM purchases WHERE timestamp >= ?`, cutoff)
	if err := row.Scan(&s.Purchases, &s.SpentETH); err != nil {
		return nil, fmt.Errorf("summarize purchases: %w", err)
	}

	row = r.db.QueryRow(`SELECT COUNT(*) FROM sweep_ticks WHERE timestamp >= ?`, cutoff)
	if err := row.Scan(&s.Ticks); err != nil {
		return nil, fmt.Errorf("summarize ticks: %w", err)
	}
	return s, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
