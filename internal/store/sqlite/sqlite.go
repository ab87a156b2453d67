// Package sqlite implements store.Store on top of a sqlite (or libsql) database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"indicadores-backend/internal/db"
	"indicadores-backend/internal/indicator"
	"indicadores-backend/internal/store"
	"indicadores-backend/internal/telemetry"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const (
	report_db_query = "db.query"
)

const insertQuery = `insert into indicators (code, date, value, source)
values (?, ?, ?, ?)
on conflict(code, date) do nothing`

const getQuery = `select value from indicators where code = ? and date = ?`

// Store is a store.Store over a *sql.DB, concurrent writers are arbitrated by the unique
// constraint on (code, date) so no application level locking is done.
type Store struct {
	conn   *sql.DB
	makeTx db.MakeTx
	tel    telemetry.API
}

var _ store.Store = Store{}

func New(conn *sql.DB, tel telemetry.API) Store {
	return Store{
		conn:   conn,
		makeTx: db.NewMakeTx(conn),
		tel:    telemetry.NewScopedAPI("store", tel),
	}
}

func (s Store) EnsureSchema(ctx context.Context) error {
	// remote libsql connections only take a single statement per call
	for _, statement := range strings.Split(db.Schema, ";") {
		if strings.TrimSpace(statement) == "" {
			continue
		}
		_, err := s.conn.ExecContext(ctx, statement)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "EnsureSchema")
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Get returns the stored value of `code` at `date`. The value column has numeric affinity so
// sqlite keeps values as REAL: up to 15 significant digits come back exactly, longer ones are
// rounded to the nearest double.
func (s Store) Get(ctx context.Context, code string, date civil.Date) (decimal.Decimal, error) {
	var value decimal.Decimal
	err := s.conn.QueryRowContext(ctx, getQuery, code, date.String()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, store.ErrNotFound
	}
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "Get", code, date.String())
		return decimal.Decimal{}, fmt.Errorf("get %s at %s: %w", code, date, err)
	}
	return value, nil
}

func (s Store) SaveAll(ctx context.Context, records []indicator.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return 0, err
	}
	defer discard()

	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "SaveAll")
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if !r.Value.IsPositive() {
			continue
		}
		res, err := stmt.ExecContext(ctx, r.Code, r.Date.String(), r.Value, string(r.Source))
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "SaveAll", r.Code, r.Date.String())
			return 0, fmt.Errorf("insert %s at %s: %w", r.Code, r.Date, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(affected)
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err))
		return 0, err
	}
	return inserted, nil
}
