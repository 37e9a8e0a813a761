package wire

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
)

// ErrWouldBlock is returned by Read/Flush when the socket has no more
// data to give, or the outbound buffer could not be fully drained —
// the normal back-pressure signal (§5, "EAGAIN is the normal
// back-pressure signal from the flush path").
var ErrWouldBlock = errors.New("wire: would block")

// ErrPeerClosed is returned by Read when the peer has performed an
// orderly shutdown (read returned 0).
var ErrPeerClosed = errors.New("wire: peer closed connection")

// ProtocolError wraps a handler-raised error that must be posted to the
// peer and logged, but must NOT destroy the client (§7, "Protocol
// misuse" policy).
type ProtocolError struct {
	ObjectID uint32
	Code     uint32
	Message  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %d: code=%d: %s", e.ObjectID, e.Code, e.Message)
}

// DisplayErrorEvent is the fixed opcode of the display interface's
// connection-level error event (§3, "surfaces an errno-like status").
const DisplayErrorEvent Opcode = 0

// displayObjectID is always 1: the display object is implicit at accept
// (§3 Lifecycles table).
const displayObjectID uint32 = 1

const maxReadChunk = 64 * 1024

// Connection is a bidirectional byte stream with a file descriptor; it
// owns the inbound/outbound buffers and the live object table for one
// client (§3, "Connection").
type Connection struct {
	fd      int
	inbound []byte
	outbuf  []byte
	objects *ObjectTable
	closed  bool

	// OnProtocolError, if set, is notified of every non-fatal protocol
	// error Dispatch logs and swallows — internal/objects uses this to
	// keep its per-client error history (§A "error & shutdown").
	OnProtocolError func(*ProtocolError)
}

// NewConnection wraps an already-accepted, non-blocking socket fd.
func NewConnection(fd int) *Connection {
	return &Connection{
		fd:      fd,
		objects: newObjectTable(),
	}
}

func (c *Connection) Fd() int { return c.fd }

func (c *Connection) Objects() *ObjectTable { return c.objects }

// Read performs one non-blocking read into the inbound buffer. A short
// read of 0 bytes means the peer has shut down (ErrPeerClosed); EAGAIN
// and EINTR are surfaced as ErrWouldBlock; any other errno is fatal to the
// connection and returned as-is (§4.3, "unrecoverable errno destroys
// the client").
func (c *Connection) Read() (int, error) {
	var chunk [maxReadChunk]byte
	n, err := unix.Read(c.fd, chunk[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, ErrWouldBlock
		}
		if err == unix.EINTR {
			return 0, ErrWouldBlock
		}
		return 0, err
	}
	if n == 0 {
		return 0, ErrPeerClosed
	}
	c.inbound = append(c.inbound, chunk[:n]...)
	return n, nil
}

// Dispatch drains as many complete messages as are buffered, routing
// each to its target object. A *ProtocolError raised by a handler is
// logged and dispatch continues with the remaining buffered messages
// (§7, "Protocol misuse" is non-fatal); any other handler error, or an
// unroutable target object id, is returned immediately and is fatal to
// the connection.
func (c *Connection) Dispatch() error {
	for {
		if len(c.inbound) < headerSize {
			return nil
		}
		h := getHeader(c.inbound)
		if int(h.Size) < headerSize {
			return fmt.Errorf("wire: malformed message header size %d", h.Size)
		}
		if len(c.inbound) < int(h.Size) {
			return nil
		}
		payload := c.inbound[headerSize:h.Size]
		rest := append([]byte(nil), c.inbound[h.Size:]...)

		obj := c.objects.Get(h.ObjectID)
		if obj == nil {
			c.inbound = rest
			return fmt.Errorf("wire: no such object %d for opcode %d", h.ObjectID, h.Opcode)
		}

		err := obj.dispatch(h.Opcode, NewArgReader(payload))
		c.inbound = rest
		if err != nil {
			var perr *ProtocolError
			if errors.As(err, &perr) {
				log.Log.Warning(perr.Error())
				if c.OnProtocolError != nil {
					c.OnProtocolError(perr)
				}
				continue
			}
			return err
		}
	}
}

// queueEvent frames and appends one outbound event.
func (c *Connection) queueEvent(objectID uint32, op Opcode, args *ArgWriter) {
	payload := args.Bytes()
	size := headerSize + len(payload)
	buf := make([]byte, size)
	putHeader(buf, header{ObjectID: objectID, Opcode: op, Size: uint16(size)})
	copy(buf[headerSize:], payload)
	c.outbuf = append(c.outbuf, buf...)
}

// PostProtocolError encodes display.error(object_id, code, message) and
// returns a *ProtocolError so the caller can log it without destroying
// the client (§4.3.1, §7).
func (c *Connection) PostProtocolError(objectID uint32, code uint32, format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	w := NewArgWriter().PutUint32(objectID).PutUint32(code).PutString(msg)
	c.queueEvent(displayObjectID, DisplayErrorEvent, w)
	return &ProtocolError{ObjectID: objectID, Code: code, Message: msg}
}

// outOfMemoryCode is the fixed error code used for allocation failures
// posted on the display object (§7, "Allocation failure").
const outOfMemoryCode uint32 = 1

// PostOutOfMemory posts the connection-level out-of-memory error.
func (c *Connection) PostOutOfMemory() error {
	return c.PostProtocolError(displayObjectID, outOfMemoryCode, "out of memory")
}

// handlerPanicCode is posted when a request handler panics (§A.2): the
// panic is recovered rather than propagated so one broken handler
// cannot bring down the whole event loop, but the connection it broke
// is still torn down.
const handlerPanicCode uint32 = 2

// PostHandlerPanic posts a connection-level protocol error describing a
// recovered handler panic.
func (c *Connection) PostHandlerPanic(recovered interface{}) error {
	return c.PostProtocolError(displayObjectID, handlerPanicCode, "internal error: %v", recovered)
}

// HasPendingWrites reports whether Flush still has bytes queued.
func (c *Connection) HasPendingWrites() bool {
	return len(c.outbuf) > 0
}

// Flush performs non-blocking writes (retrying on EINTR), draining as
// much of the outbound buffer as the socket accepts. EAGAIN is surfaced as
// ErrWouldBlock with the remainder left queued; any other errno is
// fatal (§4.3, flush pass).
func (c *Connection) Flush() error {
	for len(c.outbuf) > 0 {
		n, err := unix.Write(c.fd, c.outbuf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return ErrWouldBlock
			}
			if err == unix.EINTR {
				continue
			}
			return err
		}
		c.outbuf = c.outbuf[n:]
	}
	return nil
}

// Close closes the underlying fd. Safe to call multiple times.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return unix.Close(c.fd)
}
