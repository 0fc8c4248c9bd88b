package irc

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/ergochat/irc-go/ircreader"
	"go.uber.org/zap"
)

const (
	initialReadBuffer = 1024
	// 8191 bytes of tags plus a 512 byte message.
	maxLineLen = 8191 + 512
)

// RecordSource yields incoming records one at a time. Next returns io.EOF
// once the remote side has closed the connection.
type RecordSource interface {
	Next(ctx context.Context) (*Record, error)
}

// Transport is a connected IRC server link.
type Transport interface {
	RecordSource
	Send(command string, params ...string) error
}

// DialOptions controls how Dial connects.
type DialOptions struct {
	TLS                bool
	InsecureSkipVerify bool
	Timeout            time.Duration
	// Logger receives raw protocol lines at debug level. Nil disables it.
	Logger *zap.Logger
}

// Conn is a Transport over a net.Conn. Send and Next must not be called
// concurrently with themselves; Close may be called from any goroutine.
type Conn struct {
	conn   net.Conn
	reader ircreader.Reader
	log    *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ Transport = (*Conn)(nil)

// Dial connects to addr ("host:port").
func Dial(ctx context.Context, addr string, opts DialOptions) (*Conn, error) {
	dialer := &net.Dialer{Timeout: opts.Timeout}

	var (
		c   net.Conn
		err error
	)
	if opts.TLS {
		host, _, splitErr := net.SplitHostPort(addr)
		if splitErr != nil {
			return nil, splitErr
		}
		tlsDialer := &tls.Dialer{
			NetDialer: dialer,
			Config: &tls.Config{
				ServerName:         host,
				InsecureSkipVerify: opts.InsecureSkipVerify,
			},
		}
		c, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		c, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	return NewConn(c, opts.Logger), nil
}

// NewConn wraps an established connection.
func NewConn(c net.Conn, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	conn := &Conn{conn: c, log: log}
	conn.reader.Initialize(c, initialReadBuffer, maxLineLen)
	return conn
}

// Next blocks until a record arrives, the connection fails, or ctx is done.
// Lines that fail to parse are logged and skipped.
func (c *Conn) Next(ctx context.Context) (*Record, error) {
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return nil, err
		}
		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		c.log.Debug("recv", zap.ByteString("line", line))

		rec, err := ParseRecord(string(line))
		if err != nil {
			c.log.Warn("skipping malformed line", zap.ByteString("line", line), zap.Error(err))
			continue
		}
		return rec, nil
	}
}

func (c *Conn) readLine(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Cancelling ctx expires the read deadline, which unblocks ReadLine.
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(fired)
		c.conn.SetReadDeadline(time.Unix(1, 0))
	})
	line, err := c.reader.ReadLine()
	if !stop() {
		<-fired
		c.conn.SetReadDeadline(time.Time{})
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return line, nil
}

// Send writes one command. The last parameter is sent as a trailing
// parameter when it needs to be.
func (c *Conn) Send(command string, params ...string) error {
	msg := ircmsg.MakeMessage(nil, "", command, params...)
	line, err := msg.LineBytes()
	if err != nil {
		return err
	}
	c.log.Debug("send", zap.ByteString("line", bytes.TrimRight(line, "\r\n")))
	_, err = c.conn.Write(line)
	return err
}

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}
