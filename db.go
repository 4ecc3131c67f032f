package main

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// openDB opens (or creates) the SQLite database at path and migrates the
// schema. SQLite only enforces foreign keys when asked, hence the DSN flag.
func openDB(path string) (*gorm.DB, error) {
	dsn := "file:" + path + "?_foreign_keys=on"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return gdb, migrate(gdb)
}

func migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&User{}, &Message{}, &Follows{})
}

func asSQLiteError(err error) (sqlite3.Error, bool) {
	var serr sqlite3.Error
	ok := errors.As(err, &serr)
	return serr, ok
}

// isUniqueViolation reports whether err is a UNIQUE or primary-key
// constraint failure, e.g. a duplicate username or follow edge.
func isUniqueViolation(err error) bool {
	serr, ok := asSQLiteError(err)
	return ok && (serr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey)
}

// isForeignKeyViolation reports whether err is a reference to a missing
// row, e.g. a message pointing at a nonexistent user.
func isForeignKeyViolation(err error) bool {
	serr, ok := asSQLiteError(err)
	return ok && serr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// isCheckViolation reports whether err broke a CHECK constraint, e.g. the
// message length bound.
func isCheckViolation(err error) bool {
	serr, ok := asSQLiteError(err)
	return ok && serr.ExtendedCode == sqlite3.ErrConstraintCheck
}
