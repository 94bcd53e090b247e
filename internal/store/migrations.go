package store

// schemaVersionDDL is created before any migration runs.
const schemaVersionDDL = `CREATE TABLE IF NOT EXISTS schema_version (
	version    INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// migration is one versioned schema step. The runner records its version.
type migration struct {
	version int
	name    string
	sql     string
}

// migrations run in slice order; versions increase by one from 1.
var migrations = []migration{
	{
		version: 1,
		name:    "production days and items",
		sql: `
CREATE TABLE IF NOT EXISTS production_days (
	id         TEXT PRIMARY KEY,
	date       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS productions (
	id                  TEXT PRIMARY KEY,
	production_day_id   TEXT NOT NULL REFERENCES production_days(id) ON DELETE CASCADE,
	code                TEXT NOT NULL,
	product_name        TEXT NOT NULL,
	quantity            INTEGER NOT NULL DEFAULT 0 CHECK(quantity >= 0),
	programmed_quantity INTEGER NOT NULL DEFAULT 0 CHECK(programmed_quantity >= 0),
	has_divergence      INTEGER NOT NULL DEFAULT 0 CHECK(has_divergence IN (0, 1)),
	status              TEXT NOT NULL DEFAULT 'PENDING'
		CHECK(status IN ('PENDING', 'IN_PRODUCTION', 'COMPLETED')),
	display_order       INTEGER,
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_production_days_date ON production_days(date);
CREATE INDEX IF NOT EXISTS idx_productions_day ON productions(production_day_id);
CREATE INDEX IF NOT EXISTS idx_productions_status ON productions(status);
CREATE INDEX IF NOT EXISTS idx_productions_created_at ON productions(created_at);
`,
	},
	{
		version: 2,
		name:    "item tracking columns",
		sql: `
ALTER TABLE productions ADD COLUMN department TEXT NOT NULL DEFAULT '';
ALTER TABLE productions ADD COLUMN batch_number TEXT NOT NULL DEFAULT '';
ALTER TABLE productions ADD COLUMN transaction_number TEXT NOT NULL DEFAULT '';

CREATE INDEX IF NOT EXISTS idx_productions_day_order
	ON productions(production_day_id, display_order);
`,
	},
	{
		version: 3,
		name:    "preferences",
		sql: `
CREATE TABLE IF NOT EXISTS preferences (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}
