package objects

import "github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"

// Registry is the peer-facing directory of globals (§4.3.2).
type Registry struct {
	Object *wire.Object
	Client *Client
}

// global describes one advertised interface; order matters (§4.3.1:
// "the order is observable and must be preserved").
type global struct {
	iface   string
	version uint32
}

var registryGlobals = []global{
	{IfaceCompositor, VersionCompositor},
	{IfaceIviAppID, VersionIviAppID},
	{IfaceSeat, VersionSeat},
	{IfaceBlobFactory, VersionBlobFactory},
}

func newRegistry(c *Client, id uint32) *Registry {
	r := &Registry{Client: c}
	obj := c.Conn.Objects().New(c.Conn, id, "wthp_registry", 1)
	obj.UserData = r
	r.Object = obj
	c.Registries[id] = r

	obj.SetHandler(OpRegistryDestroy, func(args *wire.ArgReader) error {
		delete(c.Registries, id)
		c.Conn.Objects().Delete(id)
		return nil
	})
	obj.SetHandler(OpRegistryBind, r.handleBind)

	for _, g := range registryGlobals {
		obj.PostEvent(OpRegistryEventGlobal, wire.NewArgWriter().
			PutUint32(1).
			PutString(g.iface).
			PutUint32(uint32(g.version)))
	}
	return r
}

func (r *Registry) handleBind(args *wire.ArgReader) error {
	name, err := args.Uint32()
	if err != nil {
		return err
	}
	ifaceName, err := args.String()
	if err != nil {
		return err
	}
	version, err := args.Uint32()
	if err != nil {
		return err
	}
	newID, err := args.NewID()
	if err != nil {
		return err
	}
	_ = name
	_ = version

	c := r.Client
	switch ifaceName {
	case IfaceCompositor:
		newCompositor(c, newID)
	case IfaceBlobFactory:
		newBlobFactory(c, newID)
		if c.latestSeat != nil {
			c.latestSeat.announceCapabilities()
		}
	case IfaceIviAppID:
		newIviAppID(c, newID)
	case IfaceSeat:
		newSeat(c, newID)
	default:
		return c.Conn.PostProtocolError(r.Object.ID, ErrCodeInvalidInterface, "unknown interface %q", ifaceName)
	}
	return nil
}
