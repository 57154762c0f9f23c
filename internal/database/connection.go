package database

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/awake/awake/internal/models"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoJournal is returned by OpenExisting when nothing has been journalled yet
var ErrNoJournal = stderrors.New("no tick journal")

// DB is the tick journal
type DB struct {
	*gorm.DB
	path string
}

// Create opens the journal at path for writing, creating its directory and
// schema when missing
func Create(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "create journal directory")
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}

	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// OpenExisting opens a journal for reading. It never creates files; a
// missing journal yields ErrNoJournal.
func OpenExisting(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoJournal, "%s", path)
		}
		return nil, errors.Wrap(err, "stat journal")
	}

	db, err := open(path)
	if err != nil {
		return nil, err
	}

	// Journals written by older builds may lack newer columns
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func open(path string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", path)
	}

	return &DB{DB: gdb, path: path}, nil
}

// Path returns the journal file
func (db *DB) Path() string {
	return db.path
}

// Initialize migrates the tick event table
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.TickEvent{}); err != nil {
		return errors.Wrap(err, "migrate journal schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "get underlying sql.DB")
	}
	return sqlDB.Close()
}
