package objects

import (
	"fmt"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

// FatalSpawnError marks a worker-spawn failure. §4.5/§7 treat a failed
// fork as fatal to the server, not just to the requesting client, so
// this is distinguished from an ordinary handler error: internal/server
// must shut the whole process down on seeing one instead of just
// destroying the client connection that triggered it.
type FatalSpawnError struct {
	Err error
}

func (e *FatalSpawnError) Error() string { return fmt.Sprintf("worker spawn failed: %v", e.Err) }
func (e *FatalSpawnError) Unwrap() error { return e.Err }

// IviAppID is the factory for application-identified top-level
// surfaces (§4.3.7).
type IviAppID struct {
	Object *wire.Object
	Client *Client
}

func newIviAppID(c *Client, id uint32) *IviAppID {
	a := &IviAppID{Client: c}
	obj := c.Conn.Objects().New(c.Conn, id, IfaceIviAppID, VersionIviAppID)
	obj.UserData = a
	a.Object = obj
	c.IviAppIDs[id] = a

	obj.SetHandler(OpIviAppIDDestroy, func(args *wire.ArgReader) error {
		delete(c.IviAppIDs, id)
		c.Conn.Objects().Delete(id)
		return nil
	})
	obj.SetHandler(OpIviAppIDSurfaceCreate, a.handleSurfaceCreate)
	return a
}

func (a *IviAppID) handleSurfaceCreate(args *wire.ArgReader) error {
	appID, err := args.String()
	if err != nil {
		return err
	}
	surfaceID, err := args.Uint32()
	if err != nil {
		return err
	}
	iviID, err := args.NewID()
	if err != nil {
		return err
	}

	c := a.Client
	surfObj := c.Conn.Objects().Get(surfaceID)
	if surfObj == nil {
		return c.Conn.PostProtocolError(a.Object.ID, ErrCodeInvalidInterface, "surface_create: no such surface %d", surfaceID)
	}
	surf, _ := surfObj.UserData.(*Surface)
	if surf == nil {
		return c.Conn.PostProtocolError(a.Object.ID, ErrCodeInvalidInterface, "surface_create: object %d is not a surface", surfaceID)
	}

	effectiveAppID := appID
	if c.AppIDOverride != "" {
		effectiveAppID = c.AppIDOverride
	}

	// Spawn before any of the surface is promoted to ivi-bound: §8
	// requires that a surface with ivi_id=0 never forwards, so nothing
	// may claim promotion (new object, non-zero ivi_id, Ready) until a
	// worker genuinely exists to receive what gets forwarded to it. A
	// failed fork is fatal to the server (§4.5, §7), not a recoverable
	// per-client condition, so it is never softened into a protocol
	// error here.
	pid, fwd, err := c.spawner.Spawn(surf.Window, effectiveAppID, c.Port)
	if err != nil {
		return &FatalSpawnError{Err: err}
	}

	iviSurf := &IviSurface{Client: c, AppID: a, Surface: surf}
	obj := c.Conn.Objects().New(c.Conn, iviID, "wthp_ivi_surface", 1)
	obj.UserData = iviSurf
	iviSurf.Object = obj
	c.IviSurfaces[iviID] = iviSurf

	surf.IviID = iviID
	surf.Window.IviID = iviID
	surf.Window.Ready = true
	surf.Window.Forwarder = fwd

	c.PID = pid
	c.PIDDestroying = false

	obj.SetHandler(OpIviSurfaceDestroy, iviSurf.handleDestroy)
	return nil
}

// IviSurface owns a worker process 1:1 for its lifetime (§3, §4.3.7).
type IviSurface struct {
	Object  *wire.Object
	Client  *Client
	AppID   *IviAppID
	Surface *Surface
}

func (s *IviSurface) handleDestroy(args *wire.ArgReader) error {
	c := s.Client
	if c.PID > 0 {
		c.PIDDestroying = true
		if err := c.spawner.Signal(c.PID); err != nil {
			c.log.Warningf("client %s: signal worker pid %d: %v", c.TraceID, c.PID, err)
		}
	}
	if s.Surface != nil {
		s.Surface.IviID = 0
		if s.Surface.Window != nil {
			s.Surface.Window.IviID = 0
		}
	}
	delete(c.IviSurfaces, s.Object.ID)
	c.Conn.Objects().Delete(s.Object.ID)
	return nil
}
