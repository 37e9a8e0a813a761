package worker

import (
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/objects"
)

// forwarder receives the surface-state changes meant for a spawned
// worker and logs them at debug level. It sends nothing to the worker
// process: the worker is started through os/exec and gets no socket
// from the server, so attach/damage/commit do not reach it.
type forwarder struct {
	window *objects.Window
	pid    int
}

func newForwarder(window *objects.Window, pid int) *forwarder {
	return &forwarder{window: window, pid: pid}
}

func (f *forwarder) Attach(buf *objects.Buffer, x, y int32) {
	log.Log.Debugf("worker %d: attach buffer (x=%d,y=%d)", f.pid, x, y)
}

func (f *forwarder) Damage(x, y, w, h int32) {
	log.Log.Debugf("worker %d: damage %d,%d %dx%d", f.pid, x, y, w, h)
}

func (f *forwarder) Commit() {
	log.Log.Debugf("worker %d: commit", f.pid)
}
