package wire

import "fmt"

// RequestHandler decodes and acts on one inbound request. args is
// positioned at the start of the request's argument list; a handler
// reads exactly the arguments its opcode declares.
type RequestHandler func(args *ArgReader) error

// Object is a protocol object addressable by a 32-bit wire id (§3,
// "Protocol object"). The wire package does not know what an object
// *means* (display vs. surface vs. buffer) — that's internal/objects —
// it only knows how to route an opcode to a handler and how to encode
// that object's outbound events.
type Object struct {
	ID        uint32
	Interface string
	Version   uint32

	conn    *Connection
	vtable  map[Opcode]RequestHandler
	// UserData lets internal/objects stash its own per-object state
	// (e.g. *objects.Surface) without the wire package importing it.
	UserData interface{}
}

func newObject(conn *Connection, id uint32, iface string, version uint32) *Object {
	return &Object{
		ID:        id,
		Interface: iface,
		Version:   version,
		conn:      conn,
		vtable:    make(map[Opcode]RequestHandler),
	}
}

// SetHandler installs the handler for a request opcode.
func (o *Object) SetHandler(op Opcode, h RequestHandler) {
	o.vtable[op] = h
}

// Conn returns the owning connection, for handlers that need to post
// events on other objects or raise a protocol error.
func (o *Object) Conn() *Connection {
	return o.conn
}

// PostEvent encodes and queues an outbound event on this object.
func (o *Object) PostEvent(op Opcode, args *ArgWriter) {
	o.conn.queueEvent(o.ID, op, args)
}

func (o *Object) dispatch(op Opcode, args *ArgReader) error {
	h, ok := o.vtable[op]
	if !ok {
		return fmt.Errorf("wire: object %d (%s) has no handler for opcode %d", o.ID, o.Interface, op)
	}
	return h(args)
}

// ObjectTable is the per-connection arena of live protocol objects keyed
// by wire id. §9 re-architects the original C implementation's intrusive linked lists as
// this arena; destruction tolerates any iteration order since objects
// hold no cross-references beyond their owning client.
type ObjectTable struct {
	objects map[uint32]*Object
}

func newObjectTable() *ObjectTable {
	return &ObjectTable{objects: make(map[uint32]*Object)}
}

// New allocates and registers a new protocol object under id (the id is
// always peer-allocated, carried as a new_id argument on some other
// request — the table never invents ids itself).
func (t *ObjectTable) New(conn *Connection, id uint32, iface string, version uint32) *Object {
	obj := newObject(conn, id, iface, version)
	t.objects[id] = obj
	return obj
}

// Get looks up a live object by id. Returns nil if absent or already
// destroyed — callers must check.
func (t *ObjectTable) Get(id uint32) *Object {
	return t.objects[id]
}

// Delete removes an object from the table; it performs no cascading
// destruction, that is the objects package's responsibility.
func (t *ObjectTable) Delete(id uint32) {
	delete(t.objects, id)
}

// Len reports the number of live objects, used by tests asserting
// collection invariants.
func (t *ObjectTable) Len() int {
	return len(t.objects)
}
