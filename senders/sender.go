package senders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/nets"
	"github.com/reusee/bridges/peers"
	"github.com/reusee/bridges/syncs"
	"github.com/sony/gobreaker"
)

// Sender delivers single lines to peers. Peers never reply, a send succeeds
// once the line is written.
type Sender struct {
	dialer  nets.Dialer
	timeout time.Duration
	peers   peers.Peers
	logger  logs.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func (Module) Sender(
	dialer nets.Dialer,
	timeout nets.DialTimeout,
	all peers.Peers,
	logger logs.Logger,
	m *metrics.Metrics,
) *Sender {
	return &Sender{
		dialer:   dialer,
		timeout:  timeout.Duration(),
		peers:    all,
		logger:   logger,
		metrics:  m,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (s *Sender) Peers() peers.Peers {
	return s.peers
}

// Send writes text to the named peer.
func (s *Sender) Send(ctx context.Context, name string, text string) error {
	peer, ok := s.peers.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPeer, name)
	}
	return s.SendTo(ctx, peer, text)
}

func (s *Sender) SendTo(ctx context.Context, peer peers.Peer, text string) error {
	if strings.ContainsAny(text, "\r\n") || !utf8.ValidString(text) {
		return ErrBadText
	}
	ctx = logs.WithPeer(ctx, peer.Name)

	_, err := s.breaker(peer.Name).Execute(func() (any, error) {
		return nil, s.write(ctx, peer, text)
	})

	result := "ok"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "open"
	case err != nil:
		result = "error"
	}
	s.metrics.Sends.WithLabelValues(peer.Name, result).Inc()

	if err != nil {
		s.logger.WarnContext(ctx, "send failed", "addr", peer.Addr(), "error", err)
		return fmt.Errorf("send to %s: %w", peer, err)
	}
	s.logger.InfoContext(ctx, "sent", "addr", peer.Addr(), "text", text)
	return nil
}

func (s *Sender) write(ctx context.Context, peer peers.Peer, text string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conn, err := s.dialer.DialContext(ctx, "tcp", peer.Addr())
	if err != nil {
		return err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}
	if _, err := conn.Write([]byte(text + "\n")); err != nil {
		return err
	}
	return conn.Close()
}

type Result struct {
	Peer string
	Err  error
}

const broadcastParallel = 4

// Broadcast sends text to every peer not named in except. Results follow the
// peer table order.
func (s *Sender) Broadcast(ctx context.Context, text string, except ...string) []Result {
	var targets peers.Peers
	for _, peer := range s.peers {
		skip := false
		for _, name := range except {
			if peer.Name == name {
				skip = true
				break
			}
		}
		if !skip {
			targets = append(targets, peer)
		}
	}

	results := make([]Result, len(targets))
	sem := syncs.NewSemaphore(broadcastParallel)
	var wg sync.WaitGroup
	for i, peer := range targets {
		results[i].Peer = peer.Name
		if err := sem.AcquireContext(ctx); err != nil {
			results[i].Err = err
			continue
		}
		wg.Go(func() {
			defer sem.Release()
			results[i].Err = s.SendTo(ctx, peer, text)
		})
	}
	wg.Wait()
	return results
}

// Probe reports whether the peer accepts connections. It bypasses the breaker.
func (s *Sender) Probe(ctx context.Context, peer peers.Peer) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conn, err := s.dialer.DialContext(ctx, "tcp", peer.Addr())
	if err != nil {
		return err
	}
	return conn.Close()
}
