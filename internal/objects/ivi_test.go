package objects

import (
	"errors"
	"testing"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

// A failed worker spawn must never leave a surface half-promoted: no
// new ivi_surface object, no ivi-id set anywhere, and the caller must
// see it as fatal to the server rather than recoverable.
func TestIviSurfaceCreateOnSpawnFailureDoesNotPromoteSurfaceAndIsFatal(t *testing.T) {
	c, spawner, peer := newTestClient(t)
	createSurface(t, c, peer, 1000, 1001)
	spawner.spawnErr = errors.New("fork: resource temporarily unavailable")

	bindGlobal(t, c, peer, 3000, IfaceIviAppID)
	writeRequest(t, peer, 3000, OpIviAppIDSurfaceCreate, wire.NewArgWriter().
		PutString("demo").PutUint32(1001).PutUint32(3001))

	for {
		if _, err := c.Conn.Read(); err != nil {
			break
		}
	}
	err := c.Conn.Dispatch()

	var spawnErr *FatalSpawnError
	if !errors.As(err, &spawnErr) {
		t.Fatalf("Dispatch error = %v, want a *FatalSpawnError", err)
	}

	if len(c.IviSurfaces) != 0 {
		t.Fatalf("got %d ivi surfaces after a failed spawn, want 0", len(c.IviSurfaces))
	}
	if c.Conn.Objects().Get(3001) != nil {
		t.Fatal("the ivi_surface object should never have been registered")
	}
	window := c.Surfaces[1001].Window
	if window.IviID != 0 {
		t.Fatalf("Window.IviID = %d, want 0 after a failed spawn", window.IviID)
	}
	if window.Ready {
		t.Fatal("Window.Ready should still be false after a failed spawn")
	}
	if c.Surfaces[1001].IviID != 0 {
		t.Fatalf("Surface.IviID = %d, want 0 after a failed spawn", c.Surfaces[1001].IviID)
	}
	if c.PID != 0 {
		t.Fatalf("client.PID = %d, want 0 after a failed spawn", c.PID)
	}
}
