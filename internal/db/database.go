package db

import (
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	User     string
	Pass     string
	Host     string
	Name     string
	Port     int
	Attempts uint
}

func NewConnection(cfg Config) (*sqlx.DB, error) {
	var db *sqlx.DB

	conn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.Host, cfg.User, cfg.Pass, cfg.Name, cfg.Port)

	log.Info("connecting to database...")
	err := retry.Do(
		func() error {
			var err error
			db, err = sqlx.Connect("postgres", conn)
			return err
		},
		retry.Attempts(attempts(cfg.Attempts)),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Warnf("database connection attempt %d failed", n+1)
		}),
	)
	if err != nil {
		return nil, err
	}

	log.Info("verifying connection...")
	if err := db.Ping(); err != nil {
		return nil, err
	}

	log.Info("verified postgres connection")
	return db, nil
}

func attempts(n uint) uint {
	if n == 0 {
		return 1
	}
	return n
}
