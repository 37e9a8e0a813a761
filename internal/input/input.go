// Package input implements the stable upcall surface the rendering
// worker calls into to translate host input events into protocol
// events addressed to a client's seat/pointer/touch (§4.6).
package input

import (
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/objects"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

// resolvePointer walks window -> surface -> seat -> pointer, returning
// nil if any link is absent or unbound (§4.6: "bails silently").
func resolvePointer(window *objects.Window) (*objects.Pointer, *objects.Surface) {
	if window == nil || window.Surface == nil || window.Seat == nil {
		return nil, nil
	}
	return window.Seat.Pointer, window.Surface
}

func resolveTouch(window *objects.Window) (*objects.Touch, *objects.Surface) {
	if window == nil || window.Surface == nil || window.Seat == nil {
		return nil, nil
	}
	return window.Seat.Touch, window.Surface
}

// PointerEnter posts pointer.enter(serial, surface, sx, sy).
func PointerEnter(window *objects.Window, serial uint32, sx, sy wire.Fixed) {
	ptr, surf := resolvePointer(window)
	if ptr == nil {
		return
	}
	ptr.Object.PostEvent(objects.OpPointerEventEnter, wire.NewArgWriter().
		PutUint32(serial).
		PutUint32(surf.Object.ID).
		PutFixed(sx).
		PutFixed(sy))
}

// PointerLeave posts pointer.leave(serial, surface).
func PointerLeave(window *objects.Window, serial uint32) {
	ptr, surf := resolvePointer(window)
	if ptr == nil {
		return
	}
	ptr.Object.PostEvent(objects.OpPointerEventLeave, wire.NewArgWriter().
		PutUint32(serial).
		PutUint32(surf.Object.ID))
}

// PointerMotion posts pointer.motion(time, sx, sy).
func PointerMotion(window *objects.Window, time uint32, sx, sy wire.Fixed) {
	ptr, _ := resolvePointer(window)
	if ptr == nil {
		return
	}
	ptr.Object.PostEvent(objects.OpPointerEventMotion, wire.NewArgWriter().
		PutUint32(time).
		PutFixed(sx).
		PutFixed(sy))
}

// PointerButton posts pointer.button(serial, time, button, state).
func PointerButton(window *objects.Window, serial, time, button, state uint32) {
	ptr, _ := resolvePointer(window)
	if ptr == nil {
		return
	}
	ptr.Object.PostEvent(objects.OpPointerEventButton, wire.NewArgWriter().
		PutUint32(serial).
		PutUint32(time).
		PutUint32(button).
		PutUint32(state))
}

// PointerAxis posts pointer.axis(time, axis, value).
func PointerAxis(window *objects.Window, time, axis uint32, value wire.Fixed) {
	ptr, _ := resolvePointer(window)
	if ptr == nil {
		return
	}
	ptr.Object.PostEvent(objects.OpPointerEventAxis, wire.NewArgWriter().
		PutUint32(time).
		PutUint32(axis).
		PutFixed(value))
}

// TouchDown posts touch.down(serial, time, surface, id, x, y).
func TouchDown(window *objects.Window, serial, time uint32, id int32, x, y wire.Fixed) {
	t, surf := resolveTouch(window)
	if t == nil {
		return
	}
	t.Object.PostEvent(objects.OpTouchEventDown, wire.NewArgWriter().
		PutUint32(serial).
		PutUint32(time).
		PutUint32(surf.Object.ID).
		PutInt32(id).
		PutFixed(x).
		PutFixed(y))
}

// TouchUp posts touch.up(serial, time, id).
func TouchUp(window *objects.Window, serial, time uint32, id int32) {
	t, _ := resolveTouch(window)
	if t == nil {
		return
	}
	t.Object.PostEvent(objects.OpTouchEventUp, wire.NewArgWriter().
		PutUint32(serial).
		PutUint32(time).
		PutInt32(id))
}

// TouchMotion posts touch.motion(time, id, x, y).
func TouchMotion(window *objects.Window, time uint32, id int32, x, y wire.Fixed) {
	t, _ := resolveTouch(window)
	if t == nil {
		return
	}
	t.Object.PostEvent(objects.OpTouchEventMotion, wire.NewArgWriter().
		PutUint32(time).
		PutInt32(id).
		PutFixed(x).
		PutFixed(y))
}

// TouchFrame posts touch.frame(), marking the end of a batch of touch
// events delivered in one host frame.
func TouchFrame(window *objects.Window) {
	t, _ := resolveTouch(window)
	if t == nil {
		return
	}
	t.Object.PostEvent(objects.OpTouchEventFrame, wire.NewArgWriter())
}

// TouchCancel posts touch.cancel(), discarding any in-progress touch
// sequence (e.g. the host compositor reassigned the gesture).
func TouchCancel(window *objects.Window) {
	t, _ := resolveTouch(window)
	if t == nil {
		return
	}
	t.Object.PostEvent(objects.OpTouchEventCancel, wire.NewArgWriter())
}
