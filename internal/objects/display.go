package objects

import (
	"fmt"

	"github.com/blang/semver"

	"github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"
)

// BindDisplay installs the implicit display object (wire id 1) on a
// freshly accepted connection (§3 Lifecycles: "implicit at connection
// accept"). It must be called exactly once, immediately after
// NewClient.
func BindDisplay(c *Client) {
	obj := c.Conn.Objects().New(c.Conn, 1, "wthp_display", 1)
	obj.UserData = c

	obj.SetHandler(OpDisplayClientVersion, func(args *wire.ArgReader) error {
		// Unsupported no matter what is sent: this receiver never
		// negotiates a protocol version. The diagnostic still parses
		// the sent string with semver so the message names what was
		// actually rejected instead of a bare "unsupported".
		raw, err := args.String()
		if err != nil {
			return err
		}
		diag := fmt.Sprintf("client_version is not supported (sent %q)", raw)
		if v, perr := semver.Parse(raw); perr == nil {
			diag = fmt.Sprintf("client_version %s is not supported by this receiver", v.String())
		}
		return c.Conn.PostProtocolError(obj.ID, ErrCodeUnsupportedRequest, "%s", diag)
	})

	obj.SetHandler(OpDisplaySync, func(args *wire.ArgReader) error {
		cbID, err := args.NewID()
		if err != nil {
			return err
		}
		cb := c.Conn.Objects().New(c.Conn, cbID, "wthp_callback", 1)
		cb.PostEvent(OpCallbackEventDone, wire.NewArgWriter().PutUint32(0))
		c.Conn.Objects().Delete(cbID)
		return nil
	})

	obj.SetHandler(OpDisplayGetRegistry, func(args *wire.ArgReader) error {
		regID, err := args.NewID()
		if err != nil {
			return err
		}
		newRegistry(c, regID)
		return nil
	})
}
