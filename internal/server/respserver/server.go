package respserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
	"github.com/yndnr/respkv/pkg/cmap"
)

// Config holds the RESP server configuration.
type Config struct {
	// Address is the TCP address to listen on.
	Address string
	// IdleTimeout bounds the wait for the next request on a connection.
	// Zero disables it.
	IdleTimeout time.Duration
	// WriteTimeout bounds writing one reply. Zero disables it.
	WriteTimeout time.Duration
	// BufferSize is the size of the per-connection read buffer. A request
	// must arrive in a single read of at most this many bytes, so it also
	// caps the request size below MaxBulkLen. A larger request gets one
	// limit error and the connection is closed.
	BufferSize int
	// RateLimit is the maximum number of requests per second per client IP.
	// Set to 0 to disable rate limiting.
	RateLimit int
}

// DefaultBufferSize is the read buffer size used when Config.BufferSize is 0.
const DefaultBufferSize = 512

const (
	limiterPruneInterval = time.Minute
	limiterIdleAfter     = 10 * time.Minute
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:6379",
		IdleTimeout:  0,
		WriteTimeout: 30 * time.Second,
		BufferSize:   DefaultBufferSize,
		RateLimit:    0,
	}
}

// Server accepts client connections and serves one request per read.
type Server struct {
	cfg     *Config
	engine  *Engine
	logger  logger.Logger
	metrics *metric.Registry
	limiter *rateLimiter

	ln      net.Listener
	conns   *cmap.Map[net.Conn]
	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithRegistry records connection and protocol metrics in m.
func WithRegistry(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a server that executes requests with engine.
func New(cfg *Config, engine *Engine, opts ...Option) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}

	s := &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger.Default(),
		conns:  cmap.New[net.Conn](),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.RateLimit > 0 {
		s.limiter = newRateLimiter(cfg.RateLimit)
	}
	return s
}

// Start binds the listener and serves connections in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	s.ln = ln
	s.running.Store(true)
	s.logger.Info("resp server listening", "address", ln.Addr().String())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx); err != nil && s.running.Load() {
			s.logger.Error("resp server accept error", "error", err)
		}
	}()

	if s.limiter != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.pruneLimiters()
		}()
	}
	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting, closes open connections and waits for their
// goroutines to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	close(s.done)

	var firstErr error
	if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		firstErr = err
	}
	s.conns.Range(func(_ string, c net.Conn) bool {
		_ = c.Close()
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, c)
		}()
	}
}

func (s *Server) pruneLimiters() {
	ticker := time.NewTicker(limiterPruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if n := s.limiter.prune(limiterIdleAfter); n > 0 {
				s.logger.Debug("idle rate limiters dropped", "count", n)
			}
		}
	}
}

func (s *Server) serveConn(ctx context.Context, c net.Conn) {
	connID := ulid.Make().String()
	s.conns.Set(connID, c)
	s.metrics.ConnOpened()
	defer func() {
		s.conns.Delete(connID)
		s.metrics.ConnClosed()
		_ = c.Close()
	}()
	select {
	case <-s.done:
		return
	default:
	}

	ctx = logger.WithLogger(ctx, s.logger.With("remote", c.RemoteAddr().String()))
	ctx = logger.WithConnID(ctx, connID)
	log := logger.L(ctx)
	log.Debug("connection accepted")

	ip := clientIP(c.RemoteAddr())
	buf := make([]byte, s.cfg.BufferSize)

	for {
		if s.cfg.IdleTimeout > 0 {
			if err := c.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout)); err != nil {
				return
			}
		}

		n, readErr := c.Read(buf)
		if n == 0 {
			logReadEnd(log, readErr)
			return
		}

		reply, send, closeConn := s.handle(ctx, ip, buf[:n], n == len(buf))
		if send {
			if s.cfg.WriteTimeout > 0 {
				if err := c.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout)); err != nil {
					return
				}
			}
			if _, err := reply.WriteTo(c); err != nil {
				log.Debug("write failed", "error", err)
				return
			}
		}
		if closeConn {
			return
		}
		if readErr != nil {
			logReadEnd(log, readErr)
			return
		}
	}
}

// handle processes one request and reports the reply, whether to send it
// and whether the connection must then be closed. full is set when the read
// filled the whole buffer.
func (s *Server) handle(ctx context.Context, ip string, req []byte, full bool) (Reply, bool, bool) {
	arr, err := Decode(req)
	if err != nil {
		// A full buffer that does not decode holds the head of a larger
		// request. Its tail must not be read as a new request.
		if full && !errors.Is(err, domain.ErrLimitExceeded) {
			err = domain.ErrLimitExceeded.
				WithDetails(fmt.Sprintf("request exceeds %d-byte read buffer", len(req))).
				WithCause(err)
		}
		s.metrics.RecordProtocolError(domain.GetErrorCode(err))
		if errors.Is(err, domain.ErrLimitExceeded) {
			logger.L(ctx).Warn("protocol limit exceeded", "error", err)
			return errorReply(err), true, true
		}
		logger.L(ctx).Debug("protocol error", "error", err)
		return errorReply(err), true, false
	}
	if arr.Null {
		return Reply{}, false, false
	}
	if len(arr.Tokens) == 0 {
		return Error("ERR no command"), true, false
	}

	if s.limiter != nil && !s.limiter.allow(ip) {
		s.metrics.IncRateLimited()
		return errorReply(domain.ErrRateLimited), true, false
	}

	cmd, err := Build(arr)
	if err != nil {
		s.metrics.RecordProtocolError(domain.GetErrorCode(err))
		return errorReply(err), true, false
	}
	return s.engine.Execute(ctx, cmd), true, false
}

func logReadEnd(log logger.Logger, err error) {
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		log.Debug("connection closed")
		return
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		log.Debug("connection timed out")
		return
	}
	log.Debug("connection read error", "error", err)
}
