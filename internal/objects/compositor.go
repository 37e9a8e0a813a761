package objects

import "github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"

// Compositor is the factory for surfaces and regions (§4.3.3).
type Compositor struct {
	Object *wire.Object
	Client *Client
}

func newCompositor(c *Client, id uint32) *Compositor {
	comp := &Compositor{Client: c}
	obj := c.Conn.Objects().New(c.Conn, id, IfaceCompositor, VersionCompositor)
	obj.UserData = comp
	comp.Object = obj
	c.Compositors[id] = comp

	obj.SetHandler(OpCompositorDestroy, func(args *wire.ArgReader) error {
		delete(c.Compositors, id)
		c.Conn.Objects().Delete(id)
		return nil
	})
	obj.SetHandler(OpCompositorCreateSurface, func(args *wire.ArgReader) error {
		surfID, err := args.NewID()
		if err != nil {
			return err
		}
		newSurface(c, surfID)
		return nil
	})
	obj.SetHandler(OpCompositorCreateRegion, func(args *wire.ArgReader) error {
		regionID, err := args.NewID()
		if err != nil {
			return err
		}
		newRegion(c, regionID)
		return nil
	})
	return comp
}

// Region is an opaque/input clip region (§4.3.4: accepted, carries no
// semantics in this implementation beyond its own lifecycle).
type Region struct {
	Object *wire.Object
	Client *Client
}

func newRegion(c *Client, id uint32) *Region {
	r := &Region{Client: c}
	obj := c.Conn.Objects().New(c.Conn, id, "wthp_region", 1)
	obj.UserData = r
	r.Object = obj
	c.Regions[id] = r

	obj.SetHandler(OpRegionDestroy, func(args *wire.ArgReader) error {
		delete(c.Regions, id)
		c.Conn.Objects().Delete(id)
		return nil
	})
	return r
}
