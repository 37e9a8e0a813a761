package worker

import (
	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/objects"
)

// ReapAll is run once per main-loop iteration (§4.5). Clients flagged
// pid_destroying get a blocking wait, matching the original's
// "performs a blocking wait on that pid until the child reports normal
// exit or was signalled". Every other live-pid client gets a
// non-blocking WNOHANG check — the §9 "child-death-without-destroy"
// fix (SPEC_FULL §C.3): a worker that exits on its own, without a
// prior ivi_surface.destroy, is detected here instead of leaking.
func ReapAll(clients []*objects.Client) {
	for _, c := range clients {
		if c.PID <= 0 {
			continue
		}
		if c.PIDDestroying {
			reapBlocking(c)
			continue
		}
		reapNonBlocking(c)
	}
}

func reapBlocking(c *objects.Client) {
	var status unix.WaitStatus
	_, err := unix.Wait4(c.PID, &status, 0, nil)
	if err != nil {
		log.Log.Warningf("client %s: waitpid(%d) failed: %v; will retry next pass", c.TraceID, c.PID, err)
		return
	}
	c.ClearWorkerPID()
}

func reapNonBlocking(c *objects.Client) {
	var status unix.WaitStatus
	wpid, err := unix.Wait4(c.PID, &status, unix.WNOHANG, nil)
	if err != nil || wpid != c.PID {
		return
	}
	log.Log.Warningf("client %s: worker pid %d exited unexpectedly (status=%v) without a destroy request; tearing down its ivi surfaces", c.TraceID, c.PID, status)
	c.HandleWorkerCrashed()
}
