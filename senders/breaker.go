package senders

import (
	"time"

	"github.com/sony/gobreaker"
)

const (
	breakerFailures = 3
	breakerTimeout  = 30 * time.Second
)

func (s *Sender) breaker(peer string) *gobreaker.CircuitBreaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cb, ok := s.breakers[peer]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        peer,
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.logger.Info("breaker state",
				"peer", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	s.breakers[peer] = cb
	return cb
}
