package journal

const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	order_id TEXT PRIMARY KEY,
	side TEXT NOT NULL,
	symbol TEXT NOT NULL,
	requested_shares INTEGER NOT NULL,
	shares INTEGER NOT NULL,
	requested_price TEXT NOT NULL,
	exec_price TEXT NOT NULL,
	commission TEXT NOT NULL,
	cash_delta TEXT NOT NULL,
	cash_after TEXT NOT NULL,
	date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	symbol TEXT NOT NULL,
	shares INTEGER NOT NULL,
	entry_price TEXT NOT NULL,
	exit_price TEXT NOT NULL,
	entry_date DATETIME NOT NULL,
	exit_date DATETIME NOT NULL,
	pnl TEXT NOT NULL,
	pnl_pct TEXT NOT NULL,
	holding_days INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	date DATETIME NOT NULL,
	cash TEXT NOT NULL,
	positions_value TEXT NOT NULL,
	equity TEXT NOT NULL,
	open_positions INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS signals (
	date DATETIME NOT NULL,
	kind TEXT NOT NULL,
	symbol TEXT NOT NULL,
	shares INTEGER NOT NULL,
	price TEXT NOT NULL,
	signal_date DATETIME NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_date ON orders(date);
CREATE INDEX IF NOT EXISTS idx_trades_exit ON trades(exit_date);
CREATE INDEX IF NOT EXISTS idx_equity_date ON equity(date);
CREATE INDEX IF NOT EXISTS idx_signals_date ON signals(date);
`
