package listeners

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/reusee/bridges/logs"
	"github.com/reusee/bridges/messages"
	"github.com/reusee/bridges/metrics"
	"github.com/reusee/bridges/nets"
	"github.com/reusee/bridges/peers"
)

// Listener accepts newline-delimited text for one peer. Nothing is ever
// written back to the sender.
type Listener struct {
	peer         peers.Peer
	sink         messages.Sink
	listen       nets.Listen
	maxLineBytes int
	logger       logs.Logger
	newSpan      logs.NewSpan
	metrics      *metrics.Metrics

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

type New func(peer peers.Peer, sink messages.Sink) *Listener

func (Module) New(
	listen nets.Listen,
	maxLineBytes MaxLineBytes,
	logger logs.Logger,
	newSpan logs.NewSpan,
	m *metrics.Metrics,
) New {
	return func(peer peers.Peer, sink messages.Sink) *Listener {
		if sink == nil {
			sink = func(context.Context, messages.Message) messages.Reply {
				return messages.Ack{}
			}
		}
		return &Listener{
			peer:         peer,
			sink:         sink,
			listen:       listen,
			maxLineBytes: int(maxLineBytes),
			logger:       logger,
			newSpan:      newSpan,
			metrics:      m,
			conns:        make(map[net.Conn]struct{}),
		}
	}
}

func (l *Listener) Peer() peers.Peer {
	return l.peer
}

// Addr is the bound address, nil before Listen.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln == nil {
		return nil
	}
	return l.ln.Addr()
}

// Listen binds the peer's address. An address already bound fails with a
// *BindError matching ErrPortInUse.
func (l *Listener) Listen(ctx context.Context) error {
	ctx = logs.WithPeer(ctx, l.peer.Name)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ln != nil {
		return nil
	}
	ln, err := l.listen(ctx, l.peer.Addr())
	if err != nil {
		return &BindError{
			Peer: l.peer.Name,
			Addr: l.peer.Addr(),
			Err:  err,
		}
	}
	l.ln = ln
	l.logger.InfoContext(ctx, "listening", "addr", ln.Addr().String())
	return nil
}

// Serve runs the accept loop until ctx is done or Shutdown is called.
func (l *Listener) Serve(ctx context.Context) error {
	if err := l.Listen(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(logs.WithPeer(ctx, l.peer.Name))
	defer cancel()
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.cancel = cancel
	ln := l.ln
	l.mu.Unlock()

	stop := context.AfterFunc(ctx, l.closeAll)
	defer stop()
	defer l.wg.Wait()

	var delay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				l.logger.InfoContext(ctx, "stop listening")
				return nil
			}
			l.logger.WarnContext(ctx, "accept", "error", err)
			l.metrics.ConnectionErrors.WithLabelValues(l.peer.Name, "accept").Inc()
			// back off on repeated accept failures, e.g. out of file descriptors
			delay = min(max(delay*2, 5*time.Millisecond), time.Second)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		delay = 0

		if !l.track(conn) {
			conn.Close()
			continue
		}
		go func() {
			defer l.wg.Done()
			defer l.untrack(conn)
			l.handleConn(ctx, conn)
		}()
	}
}

func (l *Listener) track(conn net.Conn) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.conns[conn] = struct{}{}
	// under mu, so Shutdown never waits before a late Add
	l.wg.Add(1)
	l.metrics.Connections.WithLabelValues(l.peer.Name).Inc()
	return true
}

func (l *Listener) untrack(conn net.Conn) {
	conn.Close()
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.conns[conn]; ok {
		delete(l.conns, conn)
		l.metrics.Connections.WithLabelValues(l.peer.Name).Dec()
	}
}

func (l *Listener) closeAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.ln != nil {
		l.ln.Close()
	}
	for conn := range l.conns {
		conn.Close()
	}
}

// Shutdown closes the socket and all connections, then waits for handlers.
func (l *Listener) Shutdown() {
	l.mu.Lock()
	cancel := l.cancel
	l.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	l.closeAll()
	l.wg.Wait()
}

func (l *Listener) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	ctx, _ = l.newSpan(ctx, "connection", "remote", remote)
	l.logger.InfoContext(ctx, "connection opened", "remote", remote)

	scanner := bufio.NewScanner(conn)
	// room for the terminator, ScanLines strips an optional \r
	scanner.Buffer(make([]byte, 0, min(4096, l.maxLineBytes+2)), l.maxLineBytes+2)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) > l.maxLineBytes {
			l.connError(ctx, remote, "too_long", ErrLineTooLong)
			return
		}
		l.handleLine(ctx, remote, lineNo, line)
	}

	err := scanner.Err()
	switch {
	case err == nil:
		l.logger.InfoContext(ctx, "connection closed", "remote", remote, "lines", lineNo)
	case errors.Is(err, bufio.ErrTooLong):
		l.connError(ctx, remote, "too_long", ErrLineTooLong)
	case ctx.Err() != nil:
		l.logger.InfoContext(ctx, "connection closed by shutdown", "remote", remote)
	default:
		l.connError(ctx, remote, "read", err)
	}
}

func (l *Listener) connError(ctx context.Context, remote string, kind string, err error) {
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, io.ErrUnexpectedEOF) {
		kind = "reset"
	}
	connErr := &ConnectionError{
		Peer:   l.peer.Name,
		Remote: remote,
		Err:    err,
	}
	l.logger.WarnContext(ctx, "connection error",
		"kind", kind,
		"error", logs.WrapSpan(ctx, connErr),
	)
	l.metrics.ConnectionErrors.WithLabelValues(l.peer.Name, kind).Inc()
}

func (l *Listener) handleLine(ctx context.Context, remote string, lineNo int, line []byte) {
	if !utf8.Valid(line) {
		decodeErr := &DecodeError{
			Peer:   l.peer.Name,
			Remote: remote,
			Line:   lineNo,
			Size:   len(line),
		}
		l.logger.WarnContext(ctx, "decode error", "error", decodeErr)
		l.metrics.DecodeErrors.WithLabelValues(l.peer.Name).Inc()
		return
	}

	msg := messages.New(l.peer.Name, string(line), remote)
	l.logger.InfoContext(ctx, "received",
		"text", msg.Text,
		"line", lineNo,
		"id", msg.ID.String(),
	)
	l.metrics.Messages.WithLabelValues(l.peer.Name).Inc()

	switch reply := l.sink(ctx, msg).(type) {
	case messages.Reject:
		l.logger.WarnContext(ctx, "rejected", "id", msg.ID.String(), "reason", reply.Reason)
	default:
		l.logger.DebugContext(ctx, "ack", "id", msg.ID.String())
	}
}
