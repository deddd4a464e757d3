package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump flattens an error chain for structured logging.
type ErrorDump struct {
	TopMessage string            `json:"top_message"`
	Code       Code              `json:"code,omitempty"`
	Chain      []string          `json:"chain,omitempty"`
	Store      *StoreDiagnostics `json:"store,omitempty"`
}

// StoreDiagnostics carries the driver-level details of a failed query.
type StoreDiagnostics struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Fields renders the diagnostics as log fields prefixed with "db_".
func (s *StoreDiagnostics) Fields() map[string]any {
	if s == nil {
		return nil
	}
	fields := map[string]any{"db_driver": s.Driver, "db_code": s.Code}
	for key, value := range map[string]string{
		"db_constraint": s.Constraint,
		"db_table":      s.Table,
		"db_column":     s.Column,
		"db_detail":     s.Detail,
		"db_message":    s.Message,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.Store = storeDiagnostics(err)
	return d
}

func storeDiagnostics(err error) *StoreDiagnostics {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &StoreDiagnostics{
			Driver:     "pgx",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &StoreDiagnostics{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &StoreDiagnostics{
			Driver:  "sqlite",
			Code:    fmt.Sprintf("%d/%d", int(liteErr.Code), int(liteErr.ExtendedCode)),
			Message: liteErr.Error(),
		}
	}
	return nil
}
