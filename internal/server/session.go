package server

import (
	"errors"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/objects"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

// session is the client session of §4.3: per-connection read/flush
// state, owning the protocol connection and the client's object graph.
type session struct {
	fd     int
	conn   *wire.Connection
	client *objects.Client
}

func newSession(fd int, appIDOverride string, port uint16, spawner objects.WorkerSpawner) *session {
	conn := wire.NewConnection(fd)
	client := objects.NewClient(conn, appIDOverride, port, spawner)
	objects.BindDisplay(client)
	return &session{fd: fd, conn: conn, client: client}
}

// readAndDispatch implements §4.3 step 2: a short read of 0 or an
// unrecoverable errno destroys the client; otherwise as many complete
// messages as are buffered are dispatched. Dispatch runs under
// log.RecoverToLog (§A.2) so a bug in one handler posts a protocol
// error and disconnects this one client instead of taking the whole
// event loop down with it.
func (s *session) readAndDispatch() error {
	for {
		_, err := s.conn.Read()
		if err != nil {
			if errors.Is(err, wire.ErrWouldBlock) {
				break
			}
			return err
		}
	}

	var dispatchErr error
	log.RecoverToLog(func() {
		dispatchErr = s.conn.Dispatch()
	}, func(recovered interface{}) {
		dispatchErr = s.conn.PostHandlerPanic(recovered)
		s.conn.Flush()
	})
	return dispatchErr
}

// flush implements §4.3 step 1 / the idle flush pass: EAGAIN is not an
// error here, it just leaves bytes queued for the next readiness pass.
func (s *session) flush() error {
	if err := s.conn.Flush(); err != nil {
		if errors.Is(err, wire.ErrWouldBlock) {
			return nil
		}
		return err
	}
	return nil
}
