package input

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/objects"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

func newTestWindow(t *testing.T) (*objects.Window, *wire.Connection, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	conn := wire.NewConnection(fds[0])

	surfObj := conn.Objects().New(conn, 50, "wthp_surface", 1)
	surf := &objects.Surface{Object: surfObj}
	surfObj.UserData = surf

	seatObj := conn.Objects().New(conn, 60, "wthp_seat", 1)
	seat := &objects.Seat{Object: seatObj}
	seatObj.UserData = seat

	ptrObj := conn.Objects().New(conn, 61, "wthp_pointer", 1)
	ptr := &objects.Pointer{Object: ptrObj, Seat: seat}
	ptrObj.UserData = ptr
	seat.Pointer = ptr

	touchObj := conn.Objects().New(conn, 62, "wthp_touch", 1)
	touch := &objects.Touch{Object: touchObj, Seat: seat}
	touchObj.UserData = touch
	seat.Touch = touch

	window := &objects.Window{Surface: surf, Seat: seat}
	surf.Window = window
	return window, conn, fds[1]
}

func drain(t *testing.T, fd int) []byte {
	t.Helper()
	buf := make([]byte, 4096)
	n, err := unix.Read(fd, buf)
	if err != nil {
		if err == unix.EAGAIN {
			return nil
		}
		t.Fatalf("read: %v", err)
	}
	return buf[:n]
}

func TestPointerEnterPostsEventOnPointerObject(t *testing.T) {
	window, conn, peer := newTestWindow(t)
	PointerEnter(window, 5, wire.FixedFromFloat64(1.5), wire.FixedFromFloat64(2.5))
	if err := conn.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	buf := drain(t, peer)
	if len(buf) == 0 {
		t.Fatal("expected an enter event on the wire")
	}
	objectID := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if objectID != 61 {
		t.Fatalf("event targets object %d, want the pointer object 61", objectID)
	}
}

func TestPointerEntersBailsSilentlyWithoutASeat(t *testing.T) {
	window := &objects.Window{Surface: &objects.Surface{}}
	// Must not panic when Seat is nil.
	PointerEnter(window, 1, 0, 0)
	PointerLeave(window, 1)
	PointerMotion(window, 1, 0, 0)
	PointerButton(window, 1, 1, 1, 1)
	PointerAxis(window, 1, 0, 0)
}

func TestTouchFrameBailsSilentlyWithoutATouch(t *testing.T) {
	window := &objects.Window{Surface: &objects.Surface{}, Seat: &objects.Seat{}}
	TouchFrame(window)
	TouchCancel(window)
	TouchDown(window, 1, 1, 0, 0, 0)
	TouchUp(window, 1, 1, 0)
	TouchMotion(window, 1, 0, 0, 0)
}
