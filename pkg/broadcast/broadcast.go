// Package broadcast publishes editing reports on a nanomsg PUB socket so
// that display processes outside netbuilder can follow a session.
//
// A frame is the topic "netbuilder.report", one flag byte and the payload.
// The payload is the JSON encoding of the report, snappy-compressed when the
// flag is FlagSnappy.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/snappy"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register transports
	_ "go.nanomsg.org/mangos/v3/transport/all"

	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
	"github.com/dd0wney/cluso-netbuilder/pkg/metrics"
)

// Topic prefixes every frame.
const Topic = "netbuilder.report"

// Payload encodings.
const (
	FlagJSON   byte = 0
	FlagSnappy byte = 1
)

var (
	ErrShortFrame = errors.New("broadcast: frame shorter than header")
	ErrBadTopic   = errors.New("broadcast: unexpected topic")
	ErrBadFlag    = errors.New("broadcast: unknown payload flag")
	ErrClosed     = errors.New("broadcast: publisher closed")
)

// Encode builds a frame for v.
func Encode(v any, compress bool) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	flag := FlagJSON
	if compress {
		payload = snappy.Encode(nil, payload)
		flag = FlagSnappy
	}

	frame := make([]byte, 0, len(Topic)+1+len(payload))
	frame = append(frame, Topic...)
	frame = append(frame, flag)
	return append(frame, payload...), nil
}

// Decode parses a frame produced by Encode into v.
func Decode(frame []byte, v any) error {
	if len(frame) < len(Topic)+1 {
		return ErrShortFrame
	}
	if string(frame[:len(Topic)]) != Topic {
		return ErrBadTopic
	}

	payload := frame[len(Topic)+1:]
	switch frame[len(Topic)] {
	case FlagJSON:
	case FlagSnappy:
		decoded, err := snappy.Decode(nil, payload)
		if err != nil {
			return fmt.Errorf("decompress report: %w", err)
		}
		payload = decoded
	default:
		return ErrBadFlag
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	return nil
}

// Publisher owns a listening PUB socket.
type Publisher struct {
	sock     mangos.Socket
	addr     string
	compress bool
	logger   logging.Logger
	metrics  *metrics.Registry

	mu     sync.Mutex
	closed bool
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the publisher's logger.
func WithLogger(l logging.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// WithMetrics records frames and bytes in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(p *Publisher) { p.metrics = r }
}

// Listen opens a PUB socket on addr (tcp://, ipc:// or inproc://).
func Listen(addr string, compress bool, opts ...Option) (*Publisher, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket to %s: %w", addr, err)
	}

	p := &Publisher{
		sock:     sock,
		addr:     addr,
		compress: compress,
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger.Info("report publisher bound", logging.String("addr", addr), logging.Bool("compress", compress))
	return p, nil
}

// Addr returns the bound address.
func (p *Publisher) Addr() string {
	return p.addr
}

// Publish sends v to every connected subscriber. PUB sockets drop frames
// for subscribers that are not keeping up; Publish never blocks on them.
func (p *Publisher) Publish(v any) error {
	frame, err := Encode(v, p.compress)
	if err != nil {
		p.record(0, err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.sock.Send(frame); err != nil {
		p.record(0, err)
		return fmt.Errorf("send report: %w", err)
	}
	p.record(len(frame), nil)
	return nil
}

func (p *Publisher) record(n int, err error) {
	if p.metrics == nil {
		return
	}
	enc := "json"
	if p.compress {
		enc = "snappy"
	}
	p.metrics.RecordBroadcast(enc, n, err)
}

// Ping reports ErrClosed once the publisher has been closed.
func (p *Publisher) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return nil
}

// Close closes the socket. It is safe to call more than once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.sock.Close()
}

// Forward publishes every value received on ch until ctx is done or ch is
// closed. Send failures are logged and do not stop forwarding.
func Forward[T any](ctx context.Context, p *Publisher, ch <-chan T) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			if err := p.Publish(v); err != nil {
				if errors.Is(err, ErrClosed) {
					return
				}
				p.logger.Warn("report broadcast failed", logging.Error(err))
			}
		}
	}
}

// Subscriber is the consumer side used by display processes.
type Subscriber struct {
	sock mangos.Socket
}

// Dial connects a SUB socket to a publisher address and subscribes to
// report frames. recvTimeout bounds each Recv; zero waits forever.
func Dial(addr string, recvTimeout time.Duration) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte(Topic)); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	if recvTimeout > 0 {
		if err := sock.SetOption(mangos.OptionRecvDeadline, recvTimeout); err != nil {
			sock.Close()
			return nil, fmt.Errorf("failed to set receive deadline: %w", err)
		}
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Subscriber{sock: sock}, nil
}

// Recv waits for the next frame and decodes it into v.
func (s *Subscriber) Recv(v any) error {
	frame, err := s.sock.Recv()
	if err != nil {
		return err
	}
	return Decode(frame, v)
}

// Close closes the socket.
func (s *Subscriber) Close() error {
	return s.sock.Close()
}
