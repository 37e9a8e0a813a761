package objects

// Window is the local-side window descriptor shared with a worker
// (§3 "Surface", ownership summary: "a Surface shares a pointer to the
// window descriptor with its worker"). It is allocated at
// compositor.create_surface and remains attached to its Surface for
// the surface's lifetime.
type Window struct {
	Surface *Surface
	// Seat is the routing target for input upcalls (§4.3.3: "the latest
	// such seat is recorded on the Window"); it may be nil if no seat
	// had been bound yet when the surface was created.
	Seat *Seat

	IviID uint32
	Ready bool

	// Forwarder is set once a worker has been spawned for this window's
	// surface (§4.3.7); attach/damage/commit on an IVI-bound surface are
	// relayed through it. Nil before spawn and after an unexpected
	// worker exit (Client.HandleWorkerCrashed).
	Forwarder WorkerForwarder
}

// WorkerForwarder relays surface-state changes to the worker owning
// this window (§4.3.4: "forwarded to the worker only when the Surface
// has a non-zero ivi-id"). The concrete transport (shared fd after
// fork, or an explicit IPC channel per §5) is internal/worker's
// concern; internal/objects only needs this narrow interface.
type WorkerForwarder interface {
	Attach(buf *Buffer, x, y int32)
	Damage(x, y, w, h int32)
	Commit()
}
