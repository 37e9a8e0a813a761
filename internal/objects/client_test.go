package objects

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

func TestAppIDOverrideTakesPrecedenceOverRequestAppID(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })

	conn := wire.NewConnection(fds[0])
	spawner := &fakeSpawner{}
	c := NewClient(conn, "override-app", 34400, spawner)
	BindDisplay(c)

	createSurface(t, c, fds[1], 1000, 1001)
	bindGlobal(t, c, fds[1], 3000, IfaceIviAppID)
	writeRequest(t, fds[1], 3000, OpIviAppIDSurfaceCreate, wire.NewArgWriter().
		PutString("from-request").PutUint32(1001).PutUint32(3001))
	dispatch(t, c)
	readEvents(t, fds[1])

	if spawner.lastAppID != "override-app" {
		t.Fatalf("lastAppID = %q, want the CLI override %q", spawner.lastAppID, "override-app")
	}
}

func TestClientDestroyIsIdempotentAndClosesConnection(t *testing.T) {
	c, spawner, peer := newTestClient(t)
	createSurface(t, c, peer, 1000, 1001)

	bindGlobal(t, c, peer, 3000, IfaceIviAppID)
	writeRequest(t, peer, 3000, OpIviAppIDSurfaceCreate, wire.NewArgWriter().
		PutString("demo").PutUint32(1001).PutUint32(3001))
	dispatch(t, c)
	readEvents(t, peer)

	c.Destroy()
	if len(spawner.signaled) != 1 {
		t.Fatalf("Destroy should signal the live worker exactly once, got %d signals", len(spawner.signaled))
	}

	// Safe to call twice: Conn.Close() is idempotent and Destroy does
	// not touch a nil-ed collection a second time in a way that panics.
	c.Destroy()
}
