package objects

import (
	"github.com/hashicorp/golang-lru"
	"github.com/op/go-logging"
	uuid "github.com/satori/go.uuid"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/log"
	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

// WorkerSpawner is the worker-lifecycle collaborator (§4.3.7, §6.5):
// given a Window, an app-id and the server's TCP port, it starts the
// rendering worker and returns its pid, or signals an already-running
// one. Implemented by internal/worker; injected here to avoid an import
// cycle between objects and worker.
type WorkerSpawner interface {
	Spawn(window *Window, appID string, port uint16) (pid int, fwd WorkerForwarder, err error)
	Signal(pid int) error
}

// errHistorySize bounds the per-client LRU of recently posted protocol
// errors (§4.7 "error & shutdown"), grounded on the teacher's
// hostAuthCallbacksBySessionID LRU in ssh_agent.go.
const errHistorySize = 16

// Client is a session bound 1:1 to a wire.Connection (§3, "Client").
type Client struct {
	TraceID string
	Conn    *wire.Connection

	AppIDOverride string
	Port          uint16
	spawner       WorkerSpawner

	PID           int
	PIDDestroying bool

	Registries    map[uint32]*Registry
	Compositors   map[uint32]*Compositor
	BlobFactories map[uint32]*BlobFactory
	Seats         map[uint32]*Seat
	IviAppIDs     map[uint32]*IviAppID
	Regions       map[uint32]*Region
	Surfaces      map[uint32]*Surface
	Buffers       map[uint32]*Buffer
	IviSurfaces   map[uint32]*IviSurface
	Pointers      map[uint32]*Pointer
	Touches       map[uint32]*Touch
	Keyboards     map[uint32]*Keyboard

	// latestSeat is the routing target new surfaces/blob-factory binds
	// pick up (§4.3.2, §4.3.3, §9 "most recently created seat" note:
	// an explicit pointer instead of a list scan).
	latestSeat *Seat

	errHistory *lru.Cache
	log        *logging.Logger
}

// NewClient constructs a Client around an already-accepted connection.
// The implicit display object (§3 Lifecycles) is bound by the caller
// immediately after construction via BindDisplay.
func NewClient(conn *wire.Connection, appIDOverride string, port uint16, spawner WorkerSpawner) *Client {
	errs, _ := lru.New(errHistorySize)
	c := &Client{
		TraceID:       uuid.NewV4().String(),
		Conn:          conn,
		AppIDOverride: appIDOverride,
		Port:          port,
		spawner:       spawner,
		Registries:    make(map[uint32]*Registry),
		Compositors:   make(map[uint32]*Compositor),
		BlobFactories: make(map[uint32]*BlobFactory),
		Seats:         make(map[uint32]*Seat),
		IviAppIDs:     make(map[uint32]*IviAppID),
		Regions:       make(map[uint32]*Region),
		Surfaces:      make(map[uint32]*Surface),
		Buffers:       make(map[uint32]*Buffer),
		IviSurfaces:   make(map[uint32]*IviSurface),
		Pointers:      make(map[uint32]*Pointer),
		Touches:       make(map[uint32]*Touch),
		Keyboards:     make(map[uint32]*Keyboard),
		errHistory:    errs,
		log:           log.Log,
	}
	conn.OnProtocolError = func(perr *wire.ProtocolError) {
		c.noteProtocolError(perr)
	}
	return c
}

// noteProtocolError records a posted error for post-mortem logging when
// the client is eventually torn down.
func (c *Client) noteProtocolError(err error) {
	if c.errHistory == nil || err == nil {
		return
	}
	c.errHistory.Add(uuid.NewV4().String(), err.Error())
}

// LatestSeat returns the most recently bound seat on this client, or
// nil if none has been bound yet.
func (c *Client) LatestSeat() *Seat {
	return c.latestSeat
}

// ClearWorkerPID consumes a clean worker exit (§4.5: "pid field is
// considered consumed; the client stays live"). Called by the reaper
// once a blocking wait on a destroying pid returns.
func (c *Client) ClearWorkerPID() {
	c.PID = 0
	c.PIDDestroying = false
}

// HandleWorkerCrashed tears down this client's ivi surfaces after a
// worker exit that was never preceded by an ivi_surface.destroy
// request — the child-death-without-destroy hole the original left as
// a FIXME (§9 Open Question), closed per this implementation's reaper.
func (c *Client) HandleWorkerCrashed() {
	for id, s := range c.IviSurfaces {
		if s.Surface != nil {
			s.Surface.IviID = 0
			if s.Surface.Window != nil {
				s.Surface.Window.IviID = 0
				s.Surface.Window.Forwarder = nil
			}
		}
		delete(c.IviSurfaces, id)
		c.Conn.Objects().Delete(id)
	}
	c.PID = 0
	c.PIDDestroying = false
}

// Destroy tears down every protocol object owned by this client — in
// any order, since objects hold no cross-references beyond the client
// (§3 invariant) — signals any live worker, and closes the connection
// (which discards its object table along with it). Safe to call once;
// callers (the event loop) must not reuse the Client afterward.
func (c *Client) Destroy() {
	if c.PID > 0 {
		c.PIDDestroying = true
		if err := c.spawner.Signal(c.PID); err != nil {
			c.log.Warningf("client %s: signal worker pid %d: %v", c.TraceID, c.PID, err)
		}
	}
	c.IviSurfaces = nil
	c.Surfaces = nil
	c.Regions = nil
	c.Buffers = nil
	c.Pointers = nil
	c.Touches = nil
	c.Keyboards = nil
	c.Seats = nil
	c.BlobFactories = nil
	c.IviAppIDs = nil
	c.Compositors = nil
	c.Registries = nil

	if c.errHistory.Len() > 0 {
		c.log.Debugf("client %s: %d protocol errors during lifetime", c.TraceID, c.errHistory.Len())
		for _, k := range c.errHistory.Keys() {
			if msg, ok := c.errHistory.Peek(k); ok {
				c.log.Debugf("client %s: %v", c.TraceID, msg)
			}
		}
	}

	c.Conn.Close()
}
