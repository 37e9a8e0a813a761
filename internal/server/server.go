// Package server owns the epoll-driven event loop, the TCP listener,
// and per-client session bookkeeping (§4.1, §4.2, §4.5).
package server

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/objects"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/worker"
)

// listenBacklog is the minimum backlog §6.3 requires.
const listenBacklog = 1024

// maxEpollEvents bounds one epoll_wait batch.
const maxEpollEvents = 64

// Server is a listening fd, an epoll set, a run flag, and the
// unordered set of active clients (§3 "Server"). Invariant: every
// client in the set has its connection fd registered in the epoll set.
type Server struct {
	listenFd int
	epollFd  int
	wakeFd   int
	port     uint16

	appIDOverride string
	spawner       objects.WorkerSpawner

	clients map[int]*session
	run     bool

	// fatalErr is set when a client's dispatch hits a condition that is
	// fatal to the whole server (§4.5, §7's "Worker spawn failure"
	// row), not just to that one connection. Run returns it once the
	// loop unwinds.
	fatalErr error
}

// New binds the listening socket and creates the epoll set, per §6.3
// (SO_REUSEADDR, backlog >= 1024, INADDR_ANY:port). appIDOverride,
// when non-empty, takes precedence over any per-surface app-id (§6.4,
// §4.3.7) — lifted out of the original C implementation's global variables into this
// constructor, per §9's explicit anti-pattern flag.
func New(port uint16, appIDOverride string, workerBinary string) (*Server, error) {
	listenFd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("server: socket: %w", err)
	}
	if err := unix.SetsockoptInt(listenFd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(listenFd)
		return nil, fmt.Errorf("server: setsockopt SO_REUSEADDR: %w", err)
	}
	addr := &unix.SockaddrInet4{Port: int(port)}
	if err := unix.Bind(listenFd, addr); err != nil {
		unix.Close(listenFd)
		return nil, fmt.Errorf("server: bind :%d: %w", port, err)
	}
	if err := unix.Listen(listenFd, listenBacklog); err != nil {
		unix.Close(listenFd)
		return nil, fmt.Errorf("server: listen: %w", err)
	}

	epollFd, err := unix.EpollCreate1(0)
	if err != nil {
		unix.Close(listenFd)
		return nil, fmt.Errorf("server: epoll_create1: %w", err)
	}
	if err := unix.EpollCtl(epollFd, unix.EPOLL_CTL_ADD, listenFd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(listenFd),
	}); err != nil {
		unix.Close(epollFd)
		unix.Close(listenFd)
		return nil, fmt.Errorf("server: epoll_ctl listener: %w", err)
	}

	// wakeFd lets Stop unblock an infinite epoll_wait from outside the
	// loop goroutine (e.g. the signal handler) without relying on a
	// blocked syscall observing a delivered signal.
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epollFd)
		unix.Close(listenFd)
		return nil, fmt.Errorf("server: eventfd: %w", err)
	}
	if err := unix.EpollCtl(epollFd, unix.EPOLL_CTL_ADD, wakeFd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(wakeFd),
	}); err != nil {
		unix.Close(wakeFd)
		unix.Close(epollFd)
		unix.Close(listenFd)
		return nil, fmt.Errorf("server: epoll_ctl wake fd: %w", err)
	}

	return &Server{
		listenFd:      listenFd,
		epollFd:       epollFd,
		wakeFd:        wakeFd,
		port:          port,
		appIDOverride: appIDOverride,
		spawner:       worker.NewSpawner(workerBinary),
		clients:       make(map[int]*session),
		run:           true,
	}, nil
}

// Port reports the listening port actually bound, which matters when
// New was called with port 0 and the kernel picked an ephemeral one.
func (s *Server) Port() (uint16, error) {
	sa, err := unix.Getsockname(s.listenFd)
	if err != nil {
		return 0, fmt.Errorf("server: getsockname: %w", err)
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("server: unexpected sockaddr type %T", sa)
	}
	return uint16(sa4.Port), nil
}

// Stop clears the run flag (§5 Cancellation: "SIGINT sets it to false
// once") and wakes the event loop if it is blocked in epoll_wait. Safe
// to call from a different goroutine than Run.
func (s *Server) Stop() {
	s.run = false
	var one [8]byte
	one[0] = 1
	unix.Write(s.wakeFd, one[:])
}

// Run blocks in the event loop until Stop is called or a fatal error
// occurs (§4.1). On return every client has been destroyed and the
// listening socket closed.
func (s *Server) Run() error {
	events := make([]unix.EpollEvent, maxEpollEvents)
	for s.run {
		s.idlePass()

		n, err := unix.EpollWait(s.epollFd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			s.shutdown()
			return fmt.Errorf("server: epoll_wait: %w", err)
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)
			if fd == s.wakeFd {
				var buf [8]byte
				unix.Read(s.wakeFd, buf[:])
				continue
			}
			if fd == s.listenFd {
				s.accept()
				continue
			}
			sess, ok := s.clients[fd]
			if !ok {
				continue
			}
			s.handleReady(sess, ev.Events)
		}
	}
	s.shutdown()
	return s.fatalErr
}

// idlePass flushes buffered outbound bytes on every client and reaps
// any worker the reaper decides is due (§4.1(a), §4.5).
func (s *Server) idlePass() {
	live := make([]*objects.Client, 0, len(s.clients))
	for _, sess := range s.clients {
		live = append(live, sess.client)
	}
	worker.ReapAll(live)

	for fd, sess := range s.clients {
		if !sess.client.Conn.HasPendingWrites() {
			continue
		}
		if err := sess.flush(); err != nil {
			s.destroy(fd)
		}
	}
}

func (s *Server) accept() {
	connFd, _, err := unix.Accept(s.listenFd)
	if err != nil {
		if err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			log.Log.Warningf("server: accept: %v", err)
		}
		return
	}
	if err := unix.SetNonblock(connFd, true); err != nil {
		log.Log.Warningf("server: set nonblocking: %v", err)
		unix.Close(connFd)
		return
	}

	sess := newSession(connFd, s.appIDOverride, s.port, s.spawner)
	if err := unix.EpollCtl(s.epollFd, unix.EPOLL_CTL_ADD, connFd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(connFd),
	}); err != nil {
		log.Log.Warningf("server: epoll_ctl add client: %v", err)
		sess.client.Destroy()
		return
	}
	s.clients[connFd] = sess
	log.Log.Infof("client %s: accepted (fd=%d)", sess.client.TraceID, connFd)
}

// handleReady implements the per-readiness cycle of §4.3.
func (s *Server) handleReady(sess *session, mask uint32) {
	if mask&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		s.destroy(sess.fd)
		return
	}

	if mask&unix.EPOLLOUT != 0 {
		if err := sess.flush(); err != nil {
			s.destroy(sess.fd)
			return
		}
		if !sess.client.Conn.HasPendingWrites() {
			s.demoteToReadOnly(sess)
		}
	}

	if mask&unix.EPOLLIN != 0 {
		if err := sess.readAndDispatch(); err != nil {
			s.destroy(sess.fd)
			var spawnErr *objects.FatalSpawnError
			if errors.As(err, &spawnErr) {
				log.Log.Criticalf("server: %v: stopping (fatal to server per §4.5/§7)", err)
				s.fatalErr = err
				s.Stop()
			}
			return
		}
	}

	if sess.client.Conn.HasPendingWrites() {
		s.promoteToReadWrite(sess)
	}
}

func (s *Server) promoteToReadWrite(sess *session) {
	unix.EpollCtl(s.epollFd, unix.EPOLL_CTL_MOD, sess.fd, &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT,
		Fd:     int32(sess.fd),
	})
}

func (s *Server) demoteToReadOnly(sess *session) {
	unix.EpollCtl(s.epollFd, unix.EPOLL_CTL_MOD, sess.fd, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(sess.fd),
	})
}

func (s *Server) destroy(fd int) {
	sess, ok := s.clients[fd]
	if !ok {
		return
	}
	delete(s.clients, fd)
	unix.EpollCtl(s.epollFd, unix.EPOLL_CTL_DEL, fd, nil)
	log.Log.Infof("client %s: destroyed", sess.client.TraceID)
	sess.client.Destroy()
}

// shutdown destroys every client and closes server-owned fds (§5:
// "On stop, every client is destroyed ... after which the process
// exits").
func (s *Server) shutdown() {
	for fd := range s.clients {
		s.destroy(fd)
	}
	unix.Close(s.wakeFd)
	unix.Close(s.epollFd)
	unix.Close(s.listenFd)
}
