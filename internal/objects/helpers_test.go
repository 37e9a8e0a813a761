package objects

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

// fakeSpawner is a WorkerSpawner test double that never actually forks;
// it just records what it was asked to do.
type fakeSpawner struct {
	spawnCount  int
	lastAppID   string
	lastPort    uint16
	lastWindow  *Window
	signaled    []int
	spawnErr    error
	nextPid     int
	forwarder   *fakeForwarder
}

func (f *fakeSpawner) Spawn(window *Window, appID string, port uint16) (int, WorkerForwarder, error) {
	f.spawnCount++
	f.lastAppID = appID
	f.lastPort = port
	f.lastWindow = window
	if f.spawnErr != nil {
		return 0, nil, f.spawnErr
	}
	f.nextPid++
	f.forwarder = &fakeForwarder{}
	return f.nextPid, f.forwarder, nil
}

func (f *fakeSpawner) Signal(pid int) error {
	f.signaled = append(f.signaled, pid)
	return nil
}

type fakeForwarder struct {
	attached bool
	damaged  bool
	committed bool
}

func (f *fakeForwarder) Attach(buf *Buffer, x, y int32) { f.attached = true }
func (f *fakeForwarder) Damage(x, y, w, h int32)        { f.damaged = true }
func (f *fakeForwarder) Commit()                        { f.committed = true }

// newTestClient builds a Client wired to one end of a unix socketpair; the
// other end (peerFd) is what the test writes requests to and reads events
// from, playing the role of the remote transmitter.
func newTestClient(t *testing.T) (*Client, *fakeSpawner, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })

	conn := wire.NewConnection(fds[0])
	spawner := &fakeSpawner{}
	c := NewClient(conn, "", 34400, spawner)
	BindDisplay(c)
	return c, spawner, fds[1]
}

func writeRequest(t *testing.T, fd int, objectID uint32, op wire.Opcode, args *wire.ArgWriter) {
	t.Helper()
	payload := args.Bytes()
	size := 8 + len(payload)
	buf := make([]byte, size)
	// Mirror wire's private header layout (object id, opcode, size) so
	// tests don't need an exported encoder just for themselves.
	buf[0] = byte(objectID)
	buf[1] = byte(objectID >> 8)
	buf[2] = byte(objectID >> 16)
	buf[3] = byte(objectID >> 24)
	buf[4] = byte(op)
	buf[5] = byte(op >> 8)
	buf[6] = byte(size)
	buf[7] = byte(size >> 8)
	copy(buf[8:], payload)
	if _, err := unix.Write(fd, buf); err != nil {
		t.Fatalf("write request: %v", err)
	}
}

type readEvent struct {
	objectID uint32
	op       wire.Opcode
	args     *wire.ArgReader
}

// readEvents drains every complete framed message currently available on
// fd without blocking.
func readEvents(t *testing.T, fd int) []readEvent {
	t.Helper()
	buf := make([]byte, 65536)
	n, err := unix.Read(fd, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return nil
		}
		t.Fatalf("read events: %v", err)
	}
	buf = buf[:n]

	var out []readEvent
	for len(buf) >= 8 {
		objectID := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
		op := wire.Opcode(uint16(buf[4]) | uint16(buf[5])<<8)
		size := uint16(buf[6]) | uint16(buf[7])<<8
		out = append(out, readEvent{objectID: objectID, op: op, args: wire.NewArgReader(buf[8:size])})
		buf = buf[size:]
	}
	return out
}

func dispatch(t *testing.T, c *Client) {
	t.Helper()
	for {
		if _, err := c.Conn.Read(); err != nil {
			break
		}
	}
	if err := c.Conn.Dispatch(); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	// Events are only queued by handlers; write them out so readEvents
	// can see them on the peer end.
	if err := c.Conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
}
