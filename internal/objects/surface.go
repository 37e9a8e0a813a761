package objects

import "github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"

// pendingAttach is the single overwritten-not-queued attach slot
// (original `wth-receiver-surface.c` double-commit guard, kept
// verbatim rather than idealized into a queue).
type pendingAttach struct {
	buffer *Buffer
	x, y   int32
}

// Surface is a client-side drawable, promoted to an IVI surface once
// bound (§3 "Surface", §4.3.4).
type Surface struct {
	Object *wire.Object
	Client *Client
	Window *Window

	// IviID is 0 until ivi_app_id.surface_create promotes this surface
	// (§3: "ivi-id (0 = not yet IVI-bound)").
	IviID uint32

	// PendingFrameCallback is the wire id of the most recent frame()
	// callback, or 0 if none is outstanding (§8 invariant: "at most one
	// pending frame callback per Surface").
	PendingFrameCallback uint32

	pending *pendingAttach
}

func newSurface(c *Client, id uint32) *Surface {
	s := &Surface{Client: c}
	obj := c.Conn.Objects().New(c.Conn, id, "wthp_surface", 1)
	obj.UserData = s
	s.Object = obj
	c.Surfaces[id] = s

	win := &Window{Surface: s, Seat: c.latestSeat}
	s.Window = win

	obj.SetHandler(OpSurfaceDestroy, func(args *wire.ArgReader) error {
		delete(c.Surfaces, id)
		c.Conn.Objects().Delete(id)
		return nil
	})
	obj.SetHandler(OpSurfaceAttach, s.handleAttach)
	obj.SetHandler(OpSurfaceDamage, func(args *wire.ArgReader) error {
		x, err := args.Int32()
		if err != nil {
			return err
		}
		y, err := args.Int32()
		if err != nil {
			return err
		}
		w, err := args.Int32()
		if err != nil {
			return err
		}
		h, err := args.Int32()
		if err != nil {
			return err
		}
		if s.IviID != 0 && s.Window.Forwarder != nil {
			s.Window.Forwarder.Damage(x, y, w, h)
		}
		return nil
	})
	obj.SetHandler(OpSurfaceFrame, func(args *wire.ArgReader) error {
		cbID, err := args.NewID()
		if err != nil {
			return err
		}
		c.Conn.Objects().New(c.Conn, cbID, "wthp_callback", 1)
		s.PendingFrameCallback = cbID
		return nil
	})
	// Region/scale/transform/damage-buffer: no-ops (§4.3.4).
	noop := func(args *wire.ArgReader) error { return nil }
	obj.SetHandler(OpSurfaceSetOpaqueRegion, noop)
	obj.SetHandler(OpSurfaceSetInputRegion, noop)
	obj.SetHandler(OpSurfaceSetBufferTransform, noop)
	obj.SetHandler(OpSurfaceSetBufferScale, noop)
	obj.SetHandler(OpSurfaceDamageBuffer, noop)
	obj.SetHandler(OpSurfaceCommit, s.handleCommit)
	return s
}

func (s *Surface) handleAttach(args *wire.ArgReader) error {
	bufID, err := args.Uint32()
	if err != nil {
		return err
	}
	x, err := args.Int32()
	if err != nil {
		return err
	}
	y, err := args.Int32()
	if err != nil {
		return err
	}

	// §9: resolve the buffer by looking it up on the connection's object
	// table by its inbound wire id, not by any local-variable projection.
	bufObj := s.Client.Conn.Objects().Get(bufID)
	if bufObj == nil {
		return s.Client.Conn.PostProtocolError(s.Object.ID, ErrCodeInvalidInterface, "attach: no such buffer object %d", bufID)
	}
	buf, _ := bufObj.UserData.(*Buffer)
	s.pending = &pendingAttach{buffer: buf, x: x, y: y}

	if s.IviID != 0 {
		if s.Window.Forwarder != nil {
			s.Window.Forwarder.Attach(buf, x, y)
		}
		bufObj.PostEvent(OpBufferEventComplete, wire.NewArgWriter().PutUint32(0))
	}
	return nil
}

func (s *Surface) handleCommit(args *wire.ArgReader) error {
	if s.IviID != 0 && s.Window.Forwarder != nil {
		s.Window.Forwarder.Commit()
	}
	// The pending attach slot is consumed by this commit regardless of
	// ivi-binding (SPEC_FULL §C.4: overwritten-not-queued, matching the
	// original wth-receiver-surface.c double-commit guard).
	s.pending = nil
	return nil
}

// FireFrameDone emits done() on the outstanding frame callback, if any,
// and releases it (§4.3.4: "callback must be released after done is
// emitted"). No package in this module calls it; it is exported for a
// worker-facing presentation path to call.
func (s *Surface) FireFrameDone(serial uint32) {
	if s.PendingFrameCallback == 0 {
		return
	}
	cbID := s.PendingFrameCallback
	s.PendingFrameCallback = 0
	if obj := s.Client.Conn.Objects().Get(cbID); obj != nil {
		obj.PostEvent(OpCallbackEventDone, wire.NewArgWriter().PutUint32(serial))
		s.Client.Conn.Objects().Delete(cbID)
	}
}
