package wire

import (
	"testing"

	"golang.org/x/sys/unix"
)

// newTestConnectionPair returns a Connection wrapping one end of a
// connected unix socketpair, and the raw peer fd for writing/reading
// raw framed bytes in tests.
func newTestConnectionPair(t *testing.T) (*Connection, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	return NewConnection(fds[0]), fds[1]
}

func writeMessage(t *testing.T, fd int, objectID uint32, op Opcode, args *ArgWriter) {
	t.Helper()
	payload := args.Bytes()
	size := headerSize + len(payload)
	buf := make([]byte, size)
	putHeader(buf, header{ObjectID: objectID, Opcode: op, Size: uint16(size)})
	copy(buf[headerSize:], payload)
	if _, err := unix.Write(fd, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConnectionDispatchRoutesToHandler(t *testing.T) {
	conn, peer := newTestConnectionPair(t)
	defer conn.Close()

	var gotArg uint32
	called := false
	obj := conn.Objects().New(conn, 1, "test", 1)
	obj.SetHandler(Opcode(5), func(args *ArgReader) error {
		called = true
		v, err := args.Uint32()
		gotArg = v
		return err
	})

	writeMessage(t, peer, 1, 5, NewArgWriter().PutUint32(77))
	if _, err := conn.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := conn.Dispatch(); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !called {
		t.Fatal("handler was not invoked")
	}
	if gotArg != 77 {
		t.Fatalf("handler arg = %d, want 77", gotArg)
	}
}

func TestConnectionDispatchUnroutableObjectIsFatal(t *testing.T) {
	conn, peer := newTestConnectionPair(t)
	defer conn.Close()

	writeMessage(t, peer, 99, 0, NewArgWriter())
	if _, err := conn.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := conn.Dispatch(); err == nil {
		t.Fatal("Dispatch on unknown object id: want error, got nil")
	}
}

func TestConnectionDispatchProtocolErrorIsNonFatal(t *testing.T) {
	conn, peer := newTestConnectionPair(t)
	defer conn.Close()
	_ = peer

	var seen *ProtocolError
	conn.OnProtocolError = func(e *ProtocolError) { seen = e }

	obj := conn.Objects().New(conn, 1, "test", 1)
	obj.SetHandler(Opcode(0), func(args *ArgReader) error {
		return conn.PostProtocolError(1, 3, "bad request")
	})
	// a second, well-formed message after the erroring one must still be
	// dispatched: a protocol error does not stop the drain.
	secondCalled := false
	obj.SetHandler(Opcode(1), func(args *ArgReader) error {
		secondCalled = true
		return nil
	})

	writeMessage(t, peer, 1, 0, NewArgWriter())
	writeMessage(t, peer, 1, 1, NewArgWriter())
	if _, err := conn.Read(); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := conn.Dispatch(); err != nil {
		t.Fatalf("Dispatch: want nil (protocol error is non-fatal), got %v", err)
	}
	if seen == nil {
		t.Fatal("OnProtocolError was not invoked")
	}
	if !secondCalled {
		t.Fatal("dispatch did not continue past the protocol error")
	}
}

func TestPostOutOfMemoryEncodesDisplayError(t *testing.T) {
	conn, peer := newTestConnectionPair(t)
	defer conn.Close()

	err := conn.PostOutOfMemory()
	if err == nil {
		t.Fatal("PostOutOfMemory: want non-nil *ProtocolError")
	}
	if flushErr := conn.Flush(); flushErr != nil {
		t.Fatalf("Flush: %v", flushErr)
	}

	buf := make([]byte, 256)
	n, rerr := unix.Read(peer, buf)
	if rerr != nil {
		t.Fatalf("peer read: %v", rerr)
	}
	h := getHeader(buf[:n])
	if h.ObjectID != displayObjectID || h.Opcode != DisplayErrorEvent {
		t.Fatalf("header = %+v, want object=%d opcode=%d", h, displayObjectID, DisplayErrorEvent)
	}
	r := NewArgReader(buf[headerSize:n])
	objID, _ := r.Uint32()
	code, _ := r.Uint32()
	if objID != displayObjectID || code != outOfMemoryCode {
		t.Fatalf("error args = (%d, %d), want (%d, %d)", objID, code, displayObjectID, outOfMemoryCode)
	}
}
