package ingestor

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	lj "github.com/elastic/go-lumber/lj"
	srv2 "github.com/elastic/go-lumber/server/v2"
	"github.com/thomcc/radix-sorter/iputils"
)

// Sample is one numeric value received from the network.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// --- TCP Ingestor using go-lumber v2 ---

type TCPIngestor struct {
	listener    net.Listener
	readTimeout time.Duration // for server
	events      chan *lj.Batch
	pending     *lj.Batch // taken off events by IsClosed
	closed      bool
	server      *srv2.Server
	invalid     int
	now         func() time.Time
}

func NewTCPIngestor(addr string, readTimeout time.Duration) (*TCPIngestor, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return &TCPIngestor{
		listener:    ln,
		readTimeout: readTimeout,
		events:      make(chan *lj.Batch, 1000),
		now:         time.Now,
	}, nil
}

// Addr returns the address the ingestor listens on.
func (ing *TCPIngestor) Addr() net.Addr {
	return ing.listener.Addr()
}

// Accept starts the lumberjack v2 Server.
func (ing *TCPIngestor) Accept() error {
	srv, err := srv2.NewWithListener(
		ing.listener,
		srv2.Timeout(ing.readTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create lumberjack server: %w", err)
	}
	ing.server = srv

	// Pull batches off ReceiveChan and ack them.
	go func() {
		for batch := range ing.server.ReceiveChan() {
			ing.events <- batch
			batch.ACK()
		}
		close(ing.events)
	}()

	return nil
}

// parseEvent reads the number in the event's message field. Dotted quads are
// accepted and converted to their uint32 value. An RFC 3339 "timestamp"
// field overrides the receive time.
func parseEvent(evt map[string]interface{}, received time.Time, out *Sample) error {
	msg, ok := evt["message"].(string)
	if !ok {
		return errors.New("missing message field")
	}
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return errors.New("empty message")
	}

	if iputils.LooksLikeIPv4(msg) {
		v, err := iputils.ParseIPv4(msg)
		if err != nil {
			return err
		}
		out.Value = float64(v)
	} else {
		v, err := strconv.ParseFloat(msg, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", msg)
		}
		out.Value = v
	}

	out.Timestamp = received
	if ts, ok := evt["timestamp"].(string); ok {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return fmt.Errorf("timestamp parse error: %w", err)
		}
		out.Timestamp = t
	}
	return nil
}

// ReadBatch drains every batch received so far without blocking. Events
// that do not carry a number are skipped and counted in Invalid.
func (ing *TCPIngestor) ReadBatch() ([]Sample, error) {
	return ing.ReadBatchInto(nil)
}

// ReadBatchInto is ReadBatch appending to dst.
func (ing *TCPIngestor) ReadBatchInto(dst []Sample) ([]Sample, error) {
	out := dst
	now := time.Now
	if ing.now != nil {
		now = ing.now
	}

	if ing.pending != nil {
		out = ing.appendBatch(out, ing.pending, now())
		ing.pending = nil
	}
	for {
		select {
		case batch, ok := <-ing.events:
			if !ok {
				ing.closed = true
				return out, nil
			}
			out = ing.appendBatch(out, batch, now())
		default:
			// Channel is empty, return what we have
			return out, nil
		}
	}
}

func (ing *TCPIngestor) appendBatch(out []Sample, batch *lj.Batch, received time.Time) []Sample {
	for _, evt := range batch.Events {
		m, ok := evt.(map[string]interface{})
		if !ok {
			ing.invalid++
			continue
		}
		var s Sample
		if err := parseEvent(m, received, &s); err != nil {
			ing.invalid++
			continue
		}
		out = append(out, s)
	}
	return out
}

// Invalid returns the number of events skipped by ReadBatch.
func (ing *TCPIngestor) Invalid() int {
	return ing.invalid
}

// IsClosed reports whether the event stream has ended. A batch it has to
// take off the stream to find out is held for the next ReadBatch.
func (ing *TCPIngestor) IsClosed() bool {
	if ing.server == nil || ing.closed {
		return true
	}
	if ing.pending != nil {
		return false
	}
	select {
	case batch, ok := <-ing.events:
		if !ok {
			ing.closed = true
			return true
		}
		ing.pending = batch
		return false
	default:
		return false
	}
}

// Close shuts down the server and listener.
func (ing *TCPIngestor) Close() error {
	if ing.server != nil {
		ing.server.Close()
	}
	return ing.listener.Close()
}
