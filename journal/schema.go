package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	position_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	units REAL NOT NULL,
	open_price REAL NOT NULL,
	close_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	profit REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time DATETIME NOT NULL,
	account TEXT NOT NULL,
	cash REAL NOT NULL,
	equity REAL NOT NULL,
	open_positions INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
CREATE INDEX IF NOT EXISTS idx_trades_account ON trades(account);
`
