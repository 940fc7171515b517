package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"sku-pricing/internal/model"
)

// timeLayout is fixed-width UTC so stored timestamps compare as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	if dsn == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS feature_snapshots (
	snapshot_date        TEXT NOT NULL,
	product_id           TEXT NOT NULL,
	category             TEXT NOT NULL,
	prev_price           REAL NOT NULL,
	cost_price           REAL NOT NULL,
	min_margin_pct       REAL NOT NULL,
	predicted_units_sold REAL NOT NULL,
	prev_inventory       INTEGER NOT NULL,
	sales_roll_mean_7    REAL NOT NULL,
	clearance_days       INTEGER NOT NULL,
	PRIMARY KEY (snapshot_date, product_id)
);

CREATE TABLE IF NOT EXISTS pricing_decisions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	decision_date    TEXT NOT NULL,
	product_id       TEXT NOT NULL,
	strategy         TEXT NOT NULL,
	prev_price       REAL NOT NULL,
	final_price      REAL NOT NULL,
	price_change_pct REAL NOT NULL,
	cost_price       REAL NOT NULL,
	min_margin_pct   REAL NOT NULL,
	margin_ok        INTEGER NOT NULL,
	reason           TEXT NOT NULL,
	explainability   TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	UNIQUE (decision_date, product_id)
);

CREATE TABLE IF NOT EXISTS manual_overrides (
	id            TEXT PRIMARY KEY,
	override_type TEXT NOT NULL,
	reason        TEXT NOT NULL DEFAULT '',
	created_by    TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	expires_at    TEXT,
	is_active     INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_pricing_decisions_product ON pricing_decisions(product_id, decision_date);
CREATE INDEX IF NOT EXISTS idx_manual_overrides_active ON manual_overrides(is_active, override_type);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Feature snapshots ---

type snapshotRow struct {
	SnapshotDate       string  `db:"snapshot_date"`
	ProductID          string  `db:"product_id"`
	Category           string  `db:"category"`
	PrevPrice          float64 `db:"prev_price"`
	CostPrice          float64 `db:"cost_price"`
	MinMarginPct       float64 `db:"min_margin_pct"`
	PredictedUnitsSold float64 `db:"predicted_units_sold"`
	PrevInventory      int     `db:"prev_inventory"`
	SalesRollMean7     float64 `db:"sales_roll_mean_7"`
	ClearanceDays      int     `db:"clearance_days"`
}

// SaveFeatureSnapshots upserts panel rows keyed by (date, product_id).
func (s *SQLiteStore) SaveFeatureSnapshots(ctx context.Context, rows model.Panel) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin snapshots")
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `
		INSERT INTO feature_snapshots (
			snapshot_date, product_id, category, prev_price, cost_price, min_margin_pct,
			predicted_units_sold, prev_inventory, sales_roll_mean_7, clearance_days
		) VALUES (
			:snapshot_date, :product_id, :category, :prev_price, :cost_price, :min_margin_pct,
			:predicted_units_sold, :prev_inventory, :sales_roll_mean_7, :clearance_days
		)
		ON CONFLICT (snapshot_date, product_id) DO UPDATE SET
			category = excluded.category,
			prev_price = excluded.prev_price,
			cost_price = excluded.cost_price,
			min_margin_pct = excluded.min_margin_pct,
			predicted_units_sold = excluded.predicted_units_sold,
			prev_inventory = excluded.prev_inventory,
			sales_roll_mean_7 = excluded.sales_roll_mean_7,
			clearance_days = excluded.clearance_days`

	for _, r := range rows {
		if _, err := tx.NamedExecContext(ctx, q, toSnapshotRow(r)); err != nil {
			return eris.Wrapf(err, "sqlite: upsert snapshot %s", r.Key())
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit snapshots")
}

// PanelRowsForDate returns the snapshots of one pricing day ordered by product_id.
func (s *SQLiteStore) PanelRowsForDate(ctx context.Context, day model.Date) (model.Panel, error) {
	var rows []snapshotRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM feature_snapshots WHERE snapshot_date = ? ORDER BY product_id`,
		day.String(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: select snapshots %s", day)
	}

	out := make(model.Panel, 0, len(rows))
	for _, r := range rows {
		row, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func toSnapshotRow(r model.PanelRow) snapshotRow {
	return snapshotRow{
		SnapshotDate:       r.Date.String(),
		ProductID:          r.ProductID,
		Category:           string(r.CategoryOrUnknown()),
		PrevPrice:          r.PrevPrice,
		CostPrice:          r.CostPrice,
		MinMarginPct:       r.MinMarginPct,
		PredictedUnitsSold: r.PredictedUnitsSold,
		PrevInventory:      r.PrevInventory,
		SalesRollMean7:     r.SalesRollMean7,
		ClearanceDays:      r.ClearanceDays,
	}
}

func (r snapshotRow) toModel() (model.PanelRow, error) {
	d, err := model.ParseDate(r.SnapshotDate)
	if err != nil {
		return model.PanelRow{}, eris.Wrapf(err, "sqlite: snapshot date %q", r.SnapshotDate)
	}
	return model.PanelRow{
		Date:               d,
		ProductID:          r.ProductID,
		Category:           model.Category(r.Category),
		PrevPrice:          r.PrevPrice,
		CostPrice:          r.CostPrice,
		MinMarginPct:       r.MinMarginPct,
		PredictedUnitsSold: r.PredictedUnitsSold,
		PrevInventory:      r.PrevInventory,
		SalesRollMean7:     r.SalesRollMean7,
		ClearanceDays:      r.ClearanceDays,
	}, nil
}

// --- Pricing decisions ---

type decisionRow struct {
	ID           int64   `db:"id"`
	DecisionDate string  `db:"decision_date"`
	ProductID    string  `db:"product_id"`
	Strategy     string  `db:"strategy"`
	PrevPrice    float64 `db:"prev_price"`
	FinalPrice   float64 `db:"final_price"`
	ChangePct    float64 `db:"price_change_pct"`
	CostPrice    float64 `db:"cost_price"`
	MinMarginPct float64 `db:"min_margin_pct"`
	MarginOK     bool    `db:"margin_ok"`
	Reason       string  `db:"reason"`
	Explain      string  `db:"explainability"`
	CreatedAt    string  `db:"created_at"`
}

// SaveDecisions writes records in one transaction. A second decision for the
// same (date, product_id) replaces the first.
func (s *SQLiteStore) SaveDecisions(ctx context.Context, records []model.DecisionRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin decisions")
	}
	defer tx.Rollback() //nolint:errcheck

	const q = `
		INSERT INTO pricing_decisions (
			decision_date, product_id, strategy, prev_price, final_price, price_change_pct,
			cost_price, min_margin_pct, margin_ok, reason, explainability, created_at
		) VALUES (
			:decision_date, :product_id, :strategy, :prev_price, :final_price, :price_change_pct,
			:cost_price, :min_margin_pct, :margin_ok, :reason, :explainability, :created_at
		)
		ON CONFLICT (decision_date, product_id) DO UPDATE SET
			strategy = excluded.strategy,
			prev_price = excluded.prev_price,
			final_price = excluded.final_price,
			price_change_pct = excluded.price_change_pct,
			cost_price = excluded.cost_price,
			min_margin_pct = excluded.min_margin_pct,
			margin_ok = excluded.margin_ok,
			reason = excluded.reason,
			explainability = excluded.explainability,
			created_at = excluded.created_at`

	now := s.now().UTC()
	for _, rec := range records {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		row, err := toDecisionRow(rec)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
			return eris.Wrapf(err, "sqlite: upsert decision %s/%s", rec.DecisionDate, rec.ProductID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit decisions")
}

func (s *SQLiteStore) LatestDecision(ctx context.Context, productID string) (*model.DecisionRecord, error) {
	var row decisionRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM pricing_decisions WHERE product_id = ? ORDER BY decision_date DESC, id DESC LIMIT 1`,
		productID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "decision for %s", productID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest decision %s", productID)
	}
	rec, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DecisionHistory returns a SKU's decisions, newest first. limit <= 0 means all.
func (s *SQLiteStore) DecisionHistory(ctx context.Context, productID string, limit int) ([]model.DecisionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []decisionRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM pricing_decisions WHERE product_id = ? ORDER BY decision_date DESC, id DESC LIMIT ?`,
		productID, limit,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: decision history %s", productID)
	}
	return decisionsToModel(rows)
}

// DecisionsBetween returns decisions with from <= date <= to, ordered by
// (date, product_id).
func (s *SQLiteStore) DecisionsBetween(ctx context.Context, from, to model.Date) ([]model.DecisionRecord, error) {
	var rows []decisionRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM pricing_decisions
		 WHERE decision_date >= ? AND decision_date <= ?
		 ORDER BY decision_date, product_id`,
		from.String(), to.String(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: decisions between %s and %s", from, to)
	}
	return decisionsToModel(rows)
}

func toDecisionRow(rec model.DecisionRecord) (decisionRow, error) {
	explain, err := rec.ExplainJSON()
	if err != nil {
		return decisionRow{}, eris.Wrap(err, "sqlite: marshal explainability")
	}
	return decisionRow{
		DecisionDate: rec.DecisionDate.String(),
		ProductID:    rec.ProductID,
		Strategy:     rec.Strategy,
		PrevPrice:    rec.PrevPrice,
		FinalPrice:   rec.FinalPrice,
		ChangePct:    rec.ChangePct,
		CostPrice:    rec.CostPrice,
		MinMarginPct: rec.MinMarginPct,
		MarginOK:     rec.MarginOK,
		Reason:       string(rec.Reason),
		Explain:      explain,
		CreatedAt:    formatTime(rec.CreatedAt),
	}, nil
}

func (r decisionRow) toModel() (model.DecisionRecord, error) {
	d, err := model.ParseDate(r.DecisionDate)
	if err != nil {
		return model.DecisionRecord{}, eris.Wrapf(err, "sqlite: decision date %q", r.DecisionDate)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return model.DecisionRecord{}, err
	}
	var explain model.Decision
	if err := json.Unmarshal([]byte(r.Explain), &explain); err != nil {
		return model.DecisionRecord{}, eris.Wrapf(err, "sqlite: unmarshal explainability %d", r.ID)
	}
	return model.DecisionRecord{
		ID:           r.ID,
		DecisionDate: d,
		ProductID:    r.ProductID,
		Strategy:     r.Strategy,
		PrevPrice:    r.PrevPrice,
		FinalPrice:   r.FinalPrice,
		ChangePct:    r.ChangePct,
		CostPrice:    r.CostPrice,
		MinMarginPct: r.MinMarginPct,
		MarginOK:     r.MarginOK,
		Reason:       model.Reason(r.Reason),
		Explain:      explain,
		CreatedAt:    created,
	}, nil
}

func decisionsToModel(rows []decisionRow) ([]model.DecisionRecord, error) {
	out := make([]model.DecisionRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// --- Manual overrides ---

type overrideRow struct {
	ID        string         `db:"id"`
	Kind      string         `db:"override_type"`
	Reason    string         `db:"reason"`
	CreatedBy string         `db:"created_by"`
	CreatedAt string         `db:"created_at"`
	ExpiresAt sql.NullString `db:"expires_at"`
	Active    bool           `db:"is_active"`
}

// CreateOverride stores a new active override and returns it with its id.
func (s *SQLiteStore) CreateOverride(ctx context.Context, o model.Override) (*model.Override, error) {
	if _, err := model.ParseOverrideKind(string(o.Kind)); err != nil {
		return nil, eris.Wrap(err, "sqlite: create override")
	}
	o.ID = uuid.New().String()
	o.Active = true
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now().UTC()
	}

	row := overrideRow{
		ID:        o.ID,
		Kind:      string(o.Kind),
		Reason:    o.Reason,
		CreatedBy: o.CreatedBy,
		CreatedAt: formatTime(o.CreatedAt),
		Active:    true,
	}
	if o.ExpiresAt != nil {
		row.ExpiresAt = sql.NullString{String: formatTime(*o.ExpiresAt), Valid: true}
	}

	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO manual_overrides (id, override_type, reason, created_by, created_at, expires_at, is_active)
		 VALUES (:id, :override_type, :reason, :created_by, :created_at, :expires_at, :is_active)`,
		row,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert override")
	}
	return &o, nil
}

// DeactivateOverrides releases every active override of a kind and reports
// how many were released.
func (s *SQLiteStore) DeactivateOverrides(ctx context.Context, kind model.OverrideKind) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE manual_overrides SET is_active = 0 WHERE override_type = ? AND is_active = 1`,
		string(kind),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: deactivate overrides %s", kind)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "rows affected")
	}
	return n, nil
}

// ActiveOverrides returns overrides that are active and unexpired at now,
// oldest first.
func (s *SQLiteStore) ActiveOverrides(ctx context.Context, now time.Time) ([]model.Override, error) {
	var rows []overrideRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM manual_overrides
		 WHERE is_active = 1 AND (expires_at IS NULL OR expires_at > ?)
		 ORDER BY created_at, id`,
		formatTime(now),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: active overrides")
	}

	out := make([]model.Override, 0, len(rows))
	for _, r := range rows {
		o, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r overrideRow) toModel() (model.Override, error) {
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return model.Override{}, err
	}
	o := model.Override{
		ID:        r.ID,
		Kind:      model.OverrideKind(r.Kind),
		Reason:    r.Reason,
		CreatedBy: r.CreatedBy,
		CreatedAt: created,
		Active:    r.Active,
	}
	if r.ExpiresAt.Valid {
		exp, err := parseTime(r.ExpiresAt.String)
		if err != nil {
			return model.Override{}, err
		}
		o.ExpiresAt = &exp
	}
	return o, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, eris.Wrapf(err, "sqlite: parse time %q", s)
	}
	return t, nil
}
