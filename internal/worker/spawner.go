// Package worker owns the rendering-worker lifecycle: spawning a child
// process per ivi_surface, tracking its pid, delivering termination
// signals, and reaping exits (§4.3.7, §4.5).
package worker

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/objects"
)

// Spawner implements objects.WorkerSpawner by fork/exec'ing an
// external worker binary (§6.5: "the worker is expected never to
// return into the parent's code path"). The worker's own rendering
// loop, media pipeline and host-compositor integration are out of
// scope here (§1 Non-goals); this package only owns the half of the
// contract the core is responsible for.
type Spawner struct {
	// BinaryPath is the worker executable to fork/exec. Empty disables
	// spawning entirely (useful for tests), in which case Spawn always
	// fails with an error the caller treats as a fork failure (§7,
	// "fatal to the server").
	BinaryPath string
}

// NewSpawner constructs a Spawner targeting the given worker binary.
func NewSpawner(binaryPath string) *Spawner {
	return &Spawner{BinaryPath: binaryPath}
}

// Spawn starts the worker for one ivi_surface (§4.3.7, §6.5): it is
// handed the effective app-id and the server's listening port (so it
// can dial back into a co-located media source) as command-line
// arguments. The Window descriptor is not passed to the worker process;
// it stays on the core's side, held by the returned forwarder.
func (s *Spawner) Spawn(window *objects.Window, appID string, port uint16) (int, objects.WorkerForwarder, error) {
	if s.BinaryPath == "" {
		return 0, nil, fmt.Errorf("worker: no binary configured")
	}

	cmd := exec.Command(s.BinaryPath,
		"--app-id", appID,
		"--port", strconv.Itoa(int(port)),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return 0, nil, fmt.Errorf("worker: spawn %q for app %q: %w", s.BinaryPath, appID, err)
	}

	pid := cmd.Process.Pid
	log.Log.Infof("worker: spawned pid %d for app %q on port %d", pid, appID, port)
	return pid, newForwarder(window, pid), nil
}

// Signal sends the worker a termination request (SIGINT-equivalent,
// §4.3.7: "ivi_surface.destroy ... sends a termination signal"). A
// delivery failure is logged by the caller and is not fatal (§7): the
// reaper retries next pass since pid_destroying remains set.
func (s *Spawner) Signal(pid int) error {
	return unix.Kill(pid, unix.SIGINT)
}
