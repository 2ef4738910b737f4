package devtools

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync/atomic"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"golang.org/x/sync/errgroup"
)

// Server broadcasts recorded entries to WebSocket subscribers. Each
// accepted connection is upgraded and then receives every subsequent
// entry as a binary MessagePack frame.
type Server struct {
	rec    *Recorder
	logger *slog.Logger
	addr   string

	ln     net.Listener
	g      *errgroup.Group
	cancel context.CancelFunc
	closed atomic.Bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAddr sets the listen address. Defaults to "127.0.0.1:0", an
// ephemeral local port; read the bound address from Addr.
func WithAddr(addr string) ServerOption {
	return func(s *Server) { s.addr = addr }
}

// WithServerLogger sets the server's logger.
func WithServerLogger(l *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a Server broadcasting from rec.
func NewServer(rec *Recorder, opts ...ServerOption) *Server {
	s := &Server{
		rec:    rec,
		logger: slog.Default(),
		addr:   "127.0.0.1:0",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and begins accepting connections. It returns
// once the listener is bound; serving continues until ctx is canceled
// or Close is called.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln

	ctx, s.cancel = context.WithCancel(ctx)
	s.g, ctx = errgroup.WithContext(ctx)

	s.g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	s.g.Go(func() error {
		return s.acceptLoop(ctx)
	})

	s.logger.Info("devtools server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound listen address. Valid after Start.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Close stops accepting connections and disconnects subscribers.
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cancel()

	err := s.g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		go s.serveConn(ctx, conn)
	}
}

// serveConn upgrades the connection and streams entries until the
// subscriber disconnects or the server shuts down.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close() //nolint:errcheck // best-effort close on the way out

	if _, err := ws.Upgrade(conn); err != nil {
		s.logger.Warn("devtools upgrade failed", slog.String("error", err.Error()))
		return
	}

	remote := conn.RemoteAddr().String()
	s.logger.Info("devtools subscriber connected", slog.String("remote", remote))
	defer s.logger.Info("devtools subscriber disconnected", slog.String("remote", remote))

	entries, stop := s.rec.Watch(DefaultWatchBuffer)
	defer stop()

	// Drain the client side so closes and control frames are noticed.
	readErr := make(chan struct{})
	go func() {
		defer close(readErr)
		for {
			if _, _, err := wsutil.ReadClientData(conn); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-readErr:
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			data, err := entry.Encode()
			if err != nil {
				s.logger.Error("devtools entry encode failed",
					slog.Int64("seq", entry.Seq),
					slog.String("error", err.Error()),
				)
				continue
			}
			if err := wsutil.WriteServerBinary(conn, data); err != nil {
				s.logger.Warn("devtools write failed",
					slog.String("remote", remote),
					slog.String("error", err.Error()),
				)
				return
			}
		}
	}
}
