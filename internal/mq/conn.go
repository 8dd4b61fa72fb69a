package mq

import (
	"fmt"
	"time"

	"github.com/avast/retry-go"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

type Config struct {
	User         string
	Pass         string
	Host         string
	Port         int
	Concurrency  int
	MaxReconnect uint
}

type Conn struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
}

func NewConnection(cfg Config) (Conn, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%d/", cfg.User, cfg.Pass, cfg.Host, cfg.Port)

	var conn *amqp.Connection
	log.Info("connecting to mq...")
	err := retry.Do(
		func() error {
			var err error
			conn, err = amqp.Dial(url)
			return err
		},
		retry.Attempts(attempts(cfg.MaxReconnect)),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Warnf("mq connection attempt %d failed", n+1)
		}),
	)
	if err != nil {
		return Conn{}, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return Conn{}, err
	}

	log.Info("connected to mq")
	return Conn{Conn: conn, Channel: ch}, nil
}

func (c Conn) Close() error {
	if err := c.Channel.Close(); err != nil {
		return err
	}
	return c.Conn.Close()
}

func attempts(n uint) uint {
	if n == 0 {
		return 1
	}
	return n
}
