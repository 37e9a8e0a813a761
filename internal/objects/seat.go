package objects

import "github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"

// Seat is the input-device aggregate (§3, §4.3.6). Invariant (§8): at
// most one live Pointer and at most one live Touch per Seat —
// re-binding overwrites the previous device reference (the old wire
// object itself is left alive until explicitly released or the client
// is destroyed; only routing is overwritten).
type Seat struct {
	Object *wire.Object
	Client *Client

	Pointer  *Pointer
	Touch    *Touch
	Keyboard *Keyboard
}

func newSeat(c *Client, id uint32) *Seat {
	s := &Seat{Client: c}
	obj := c.Conn.Objects().New(c.Conn, id, IfaceSeat, VersionSeat)
	obj.UserData = s
	s.Object = obj
	c.Seats[id] = s
	c.latestSeat = s

	obj.SetHandler(OpSeatGetPointer, func(args *wire.ArgReader) error {
		ptrID, err := args.NewID()
		if err != nil {
			return err
		}
		s.Pointer = newPointer(c, ptrID, s)
		return nil
	})
	obj.SetHandler(OpSeatGetTouch, func(args *wire.ArgReader) error {
		touchID, err := args.NewID()
		if err != nil {
			return err
		}
		s.Touch = newTouch(c, touchID, s)
		return nil
	})
	obj.SetHandler(OpSeatGetKeyboard, func(args *wire.ArgReader) error {
		kbID, err := args.NewID()
		if err != nil {
			return err
		}
		s.Keyboard = newKeyboard(c, kbID, s)
		return nil
	})
	obj.SetHandler(OpSeatRelease, func(args *wire.ArgReader) error {
		delete(c.Seats, id)
		if c.latestSeat == s {
			c.latestSeat = nil
		}
		c.Conn.Objects().Delete(id)
		return nil
	})

	s.announceCapabilities()
	return s
}

// announceCapabilities posts the fixed POINTER|TOUCH bitmask (§4.3.6:
// "called at seat creation, and again after a blob-factory bind").
func (s *Seat) announceCapabilities() {
	s.Object.PostEvent(OpSeatEventCapabilities, wire.NewArgWriter().PutUint32(SeatCapsSupported))
}

// Pointer is a bound pointer device (§4.3.6).
type Pointer struct {
	Object *wire.Object
	Client *Client
	Seat   *Seat
}

func newPointer(c *Client, id uint32, seat *Seat) *Pointer {
	p := &Pointer{Client: c, Seat: seat}
	obj := c.Conn.Objects().New(c.Conn, id, "wthp_pointer", 1)
	obj.UserData = p
	p.Object = obj
	c.Pointers[id] = p

	obj.SetHandler(OpPointerSetCursor, func(args *wire.ArgReader) error { return nil })
	obj.SetHandler(OpPointerRelease, func(args *wire.ArgReader) error {
		delete(c.Pointers, id)
		if seat.Pointer == p {
			seat.Pointer = nil
		}
		c.Conn.Objects().Delete(id)
		return nil
	})
	return p
}

// Touch is a bound touch device (§4.3.6).
type Touch struct {
	Object *wire.Object
	Client *Client
	Seat   *Seat
}

func newTouch(c *Client, id uint32, seat *Seat) *Touch {
	t := &Touch{Client: c, Seat: seat}
	obj := c.Conn.Objects().New(c.Conn, id, "wthp_touch", 1)
	obj.UserData = t
	t.Object = obj
	c.Touches[id] = t

	obj.SetHandler(OpTouchRelease, func(args *wire.ArgReader) error {
		delete(c.Touches, id)
		if seat.Touch == t {
			seat.Touch = nil
		}
		c.Conn.Objects().Delete(id)
		return nil
	})
	return t
}

// Keyboard is a stub device (§4.3.6: "accepts id but takes no further
// action beyond possibly attaching it").
type Keyboard struct {
	Object *wire.Object
	Client *Client
	Seat   *Seat
}

func newKeyboard(c *Client, id uint32, seat *Seat) *Keyboard {
	k := &Keyboard{Client: c, Seat: seat}
	obj := c.Conn.Objects().New(c.Conn, id, "wthp_keyboard", 1)
	obj.UserData = k
	k.Object = obj
	c.Keyboards[id] = k
	return k
}
