package respserver

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/yndnr/respkv/internal/core/domain"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// Engine executes commands against a shared store.
type Engine struct {
	store   *memory.Shared
	metrics *metric.Registry
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetrics records per-command counters and latencies in m.
func WithMetrics(m *metric.Registry) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates an Engine backed by store.
func NewEngine(store *memory.Shared, opts ...EngineOption) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// maxExpiryMillis is the largest millisecond TTL representable as a
// time.Duration.
const maxExpiryMillis = math.MaxInt64 / int64(time.Millisecond)

// Execute runs cmd and returns the reply to send. It never panics on
// client input.
func (e *Engine) Execute(ctx context.Context, cmd Command) Reply {
	start := time.Now()
	name := cmd.Upper()

	var (
		reply Reply
		err   error
	)
	switch name {
	case "PING":
		reply = e.handlePing(cmd)
	case "ECHO":
		reply = e.handleEcho(cmd)
	case "SET":
		reply, err = e.handleSet(cmd)
	case "GET":
		reply, err = e.handleGet(cmd)
	default:
		err = domain.ErrUnknownCommand.WithDetails(cmd.Name)
		name = "unknown"
	}

	if err != nil {
		if domain.IsCommandError(err) {
			logger.L(ctx).Debug("command rejected", "command", name, "error", err)
		} else {
			logger.L(ctx).Warn("command failed", "command", name, "error", err)
		}
		reply = errorReply(err)
	}
	e.metrics.RecordCommand(name, resultLabel(reply), time.Since(start))
	return reply
}

func (e *Engine) handlePing(_ Command) Reply {
	return Simple("PONG")
}

func (e *Engine) handleEcho(cmd Command) Reply {
	if len(cmd.Args) == 0 {
		return Simple("")
	}
	return Simple(cmd.Args[0])
}

// handleSet accepts "SET key value" and "SET key value <option> <ms>".
// The option token is not inspected.
func (e *Engine) handleSet(cmd Command) (Reply, error) {
	switch len(cmd.Args) {
	case 2:
		e.store.Set(cmd.Args[0], cmd.Args[1])
		return Simple("OK"), nil
	case 4:
		ms, err := strconv.ParseUint(cmd.Args[3], 10, 64)
		if err != nil {
			return Reply{}, domain.ErrInvalidArgument.WithCause(err)
		}
		if ms > uint64(maxExpiryMillis) {
			return Reply{}, domain.ErrInvalidArgument
		}
		e.store.SetWithExpiry(cmd.Args[0], cmd.Args[1], time.Duration(ms)*time.Millisecond)
		return Simple("OK"), nil
	default:
		return Reply{}, domain.ErrWrongArity.WithDetails("'SET' command: exactly two arguments are required")
	}
}

func (e *Engine) handleGet(cmd Command) (Reply, error) {
	if len(cmd.Args) != 1 {
		return Reply{}, domain.ErrWrongArity.WithDetails("'GET' command: exactly one argument is required")
	}
	value, ok := e.store.Get(cmd.Args[0])
	if !ok {
		return Null(), nil
	}
	return Simple(value), nil
}

// errorReply maps an error to the text of an error reply.
func errorReply(err error) Reply {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return Error("ERR " + domain.ErrInternal.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnknownCommand):
		return Error("ERR unknown command '" + de.Details + "'")
	case errors.Is(err, domain.ErrWrongArity):
		return Error("ERR wrong number of arguments for " + de.Details)
	case errors.Is(err, domain.ErrLimitExceeded):
		return Error("ERR " + de.Message)
	case domain.IsProtocolError(err):
		return Error("ERR protocol error: " + de.ClientMessage())
	default:
		return Error("ERR " + de.ClientMessage())
	}
}

func resultLabel(r Reply) string {
	switch r.Kind {
	case KindError:
		return "error"
	case KindNull:
		return "nil"
	default:
		return "ok"
	}
}
