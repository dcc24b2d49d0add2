package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host            string        `env:"HOST,default=localhost"`
	Port            int           `env:"PORT,default=8080"`
	LogLevel        string        `env:"LOG_LEVEL,default=info"`
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	RedisAddr       string        `env:"REDIS_ADDR,default=localhost:6379"`
	RateMaxMessages int           `env:"RATE_MAX_MESSAGES,default=5"`
	RateWindow      time.Duration `env:"RATE_WINDOW,default=10s"`
	HistoryCapacity int           `env:"HISTORY_CAPACITY,default=100"`
	CharReplacement string        `env:"CHARACTER_REPLACEMENT,default=*"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	PublishTimeout  time.Duration `env:"PUBLISH_TIMEOUT,default=2s"`
	InspectPort     int           `env:"INSPECT_PORT"` // 0 disables the inspect server
}

func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
