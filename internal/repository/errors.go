// Package repository implements the MySQL persistence layer. All
// uniqueness invariants of the checkout core (one live reservation
// lock per slot, one confirmed booking per slot, one order per payment
// session) live here as UNIQUE keys; duplicate-key violations are
// translated into the sentinels of the fault package so handlers and
// services never inspect driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the MySQL error number raised when an INSERT
// violates a UNIQUE key.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a UNIQUE key violation. The
// guarded-insert pattern relies on this: concurrent writers race on
// the insert itself, never on a check-then-act read.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// dbTime is the DATETIME layout used throughout the schema. All
// timestamps are stored and compared in UTC.
const dbTime = "2006-01-02 15:04:05"
