package monitor

import "time"

type Status struct {
	PostgreSQL   bool      `json:"postgresql"`
	Redis        bool      `json:"redis"`
	Outbox       bool      `json:"outbox"`
	OutboxSize   int       `json:"outbox_size"`
	OutboxFailed int       `json:"outbox_dead_letters"`
	LastCheck    time.Time `json:"last_check"`
}

func (s Status) online() bool {
	return s.PostgreSQL && s.Redis
}
