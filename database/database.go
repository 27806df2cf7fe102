package database

import (
	"database/sql"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mbolis/quick-vote/config"
)

func Open(cfg config.Config) (db *sql.DB, err error) {
	db, err = sql.Open("sqlite3", dsn(cfg.DBUrl))
	if err != nil {
		return
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return
	}

	return
}

// dsn enables foreign keys and a busy timeout through DSN parameters,
// so every pooled connection gets them (a PRAGMA issued once would
// only apply to the connection it happened to run on).
func dsn(path string) string {
	params := url.Values{
		"_fk":           {"true"},
		"_busy_timeout": {"5000"},
	}
	return "file:" + path + "?" + params.Encode()
}
