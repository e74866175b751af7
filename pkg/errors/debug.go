package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DBFault is the driver-neutral view of a Postgres error.
type DBFault struct {
	Driver     string `json:"driver"`
	SQLState   string `json:"sql_state"`
	Condition  string `json:"condition,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// SQLSTATE values the storefront reacts to.
const (
	SQLStateUniqueViolation      = "23505"
	SQLStateForeignKeyViolation  = "23503"
	SQLStateCheckViolation       = "23514"
	SQLStateNotNullViolation     = "23502"
	SQLStateSerializationFailure = "40001"
	SQLStateDeadlockDetected     = "40P01"
)

var sqlStateConditions = map[string]string{
	SQLStateUniqueViolation:      "unique_violation",
	SQLStateForeignKeyViolation:  "foreign_key_violation",
	SQLStateCheckViolation:       "check_violation",
	SQLStateNotNullViolation:     "not_null_violation",
	SQLStateSerializationFailure: "serialization_failure",
	SQLStateDeadlockDetected:     "deadlock_detected",
}

// Transient reports whether retrying the statement may succeed.
func (f *DBFault) Transient() bool {
	return f != nil && (f.SQLState == SQLStateSerializationFailure || f.SQLState == SQLStateDeadlockDetected)
}

// DatabaseFault extracts the Postgres error from err for either pgx or lib/pq.
func DatabaseFault(err error) (*DBFault, bool) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBFault{
			Driver:     "pgx",
			SQLState:   pgxErr.Code,
			Condition:  sqlStateConditions[pgxErr.Code],
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		state := string(pqErr.Code)
		return &DBFault{
			Driver:     "pq",
			SQLState:   state,
			Condition:  sqlStateConditions[state],
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}, true
	}

	return nil, false
}

// ErrorDump is the log-oriented rendering of an error chain.
type ErrorDump struct {
	Message string   `json:"message"`
	Code    Code     `json:"code,omitempty"`
	Chain   []string `json:"chain,omitempty"`
	DB      *DBFault `json:"db,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{Message: err.Error()}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.DB, _ = DatabaseFault(err)
	return d
}

// Fields flattens the dump into structured log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.Message,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.DB != nil {
		fields["db_driver"] = d.DB.Driver
		fields["db_sql_state"] = d.DB.SQLState
		fields["db_condition"] = d.DB.Condition
		fields["db_constraint"] = d.DB.Constraint
		fields["db_table"] = d.DB.Table
		fields["db_column"] = d.DB.Column
		fields["db_detail"] = d.DB.Detail
		fields["db_message"] = d.DB.Message
	}
	return fields
}
