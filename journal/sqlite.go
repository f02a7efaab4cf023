package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(position_id, account, symbol, side, units, open_price, close_price, open_time, close_time, profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.PositionID, t.Account, t.Symbol, t.Side, t.Units,
		t.OpenPrice, t.ClosePrice, t.OpenTime, t.CloseTime, t.Profit,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, account, cash, equity, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Account, e.Cash, e.Equity, e.OpenPositions,
	)
	return err
}

// GetTrade returns a single trade record by position ID.
func (j *SQLite) GetTrade(positionID string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT position_id, account, symbol, side, units, open_price, close_price, open_time, close_time, profit
		FROM trades
		WHERE position_id = ?`, positionID)

	err := row.Scan(
		&rec.PositionID,
		&rec.Account,
		&rec.Symbol,
		&rec.Side,
		&rec.Units,
		&rec.OpenPrice,
		&rec.ClosePrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.Profit,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", positionID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose close_time is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, account, symbol, side, units, open_price, close_price, open_time, close_time, profit
		FROM trades
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.PositionID,
			&rec.Account,
			&rec.Symbol,
			&rec.Side,
			&rec.Units,
			&rec.OpenPrice,
			&rec.ClosePrice,
			&rec.OpenTime,
			&rec.CloseTime,
			&rec.Profit,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
