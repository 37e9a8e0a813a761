package worker

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

func newTestConnection(t *testing.T) *wire.Connection {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })
	return wire.NewConnection(fds[0])
}
