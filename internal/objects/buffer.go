package objects

import "github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"

// BlobFactory instantiates opaque Buffers (§4.3.5).
type BlobFactory struct {
	Object *wire.Object
	Client *Client
}

func newBlobFactory(c *Client, id uint32) *BlobFactory {
	f := &BlobFactory{Client: c}
	obj := c.Conn.Objects().New(c.Conn, id, IfaceBlobFactory, VersionBlobFactory)
	obj.UserData = f
	f.Object = obj
	c.BlobFactories[id] = f

	obj.SetHandler(OpBlobFactoryDestroy, func(args *wire.ArgReader) error {
		delete(c.BlobFactories, id)
		c.Conn.Objects().Delete(id)
		return nil
	})
	obj.SetHandler(OpBlobFactoryCreateBuffer, f.handleCreateBuffer)
	return f
}

func (f *BlobFactory) handleCreateBuffer(args *wire.ArgReader) error {
	bufID, err := args.NewID()
	if err != nil {
		return err
	}
	size, err := args.Uint32()
	if err != nil {
		return err
	}
	data, err := args.Array()
	if err != nil {
		return err
	}
	width, err := args.Uint32()
	if err != nil {
		return err
	}
	height, err := args.Uint32()
	if err != nil {
		return err
	}
	stride, err := args.Uint32()
	if err != nil {
		return err
	}
	format, err := args.Uint32()
	if err != nil {
		return err
	}

	buf := &Buffer{
		Client: f.Client,
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
		Size:   size,
		Data:   data,
	}
	obj := f.Client.Conn.Objects().New(f.Client.Conn, bufID, "wthp_buffer", 1)
	obj.UserData = buf
	buf.Object = obj
	f.Client.Buffers[bufID] = buf

	obj.SetHandler(OpBufferDestroy, func(args *wire.ArgReader) error {
		delete(f.Client.Buffers, bufID)
		f.Client.Conn.Objects().Delete(bufID)
		return nil
	})
	return nil
}

// Buffer carries an opaque payload never interpreted by the core (§3
// "Buffer"); only forwarded by reference to the rendering worker.
type Buffer struct {
	Object *wire.Object
	Client *Client

	Width  uint32
	Height uint32
	Stride uint32
	Format uint32
	Size   uint32
	Data   []byte
}
