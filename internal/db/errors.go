package db

import (
	"errors"

	sqlcipher "github.com/mutecomm/go-sqlcipher/v4"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// IsBusy reports whether err is SQLite refusing a write because another
// connection holds or has already changed the database. Both drivers are
// checked, including the extended BUSY_SNAPSHOT code a stale WAL reader gets.
func IsBusy(err error) bool {
	var plain *sqlite.Error
	if errors.As(err, &plain) {
		return plain.Code()&0xff == sqlite3.SQLITE_BUSY
	}
	var encrypted sqlcipher.Error
	if errors.As(err, &encrypted) {
		return encrypted.Code == sqlcipher.ErrBusy
	}
	return false
}
