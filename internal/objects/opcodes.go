package objects

import "github.com/PRDCVNguyenHuuNghia/waltham-receiver/internal/wire"

// Fixed opcode numbering for every interface named in spec §4.3. Requests
// are inbound (peer -> us); events are outbound. Numbering is local to
// this implementation — nothing outside this codebase needs to agree on
// it, since the codec itself is out of scope (§6.1).
const (
	// display (object id 1, implicit at accept)
	OpDisplayClientVersion wire.Opcode = 0
	OpDisplaySync          wire.Opcode = 1
	OpDisplayGetRegistry   wire.Opcode = 2

	OpDisplayEventError wire.Opcode = wire.DisplayErrorEvent // 0

	// registry
	OpRegistryDestroy wire.Opcode = 0
	OpRegistryBind    wire.Opcode = 1

	OpRegistryEventGlobal wire.Opcode = 0

	// callback (wl_callback-equivalent, used by sync and frame)
	OpCallbackEventDone wire.Opcode = 0

	// compositor
	OpCompositorDestroy       wire.Opcode = 0
	OpCompositorCreateSurface wire.Opcode = 1
	OpCompositorCreateRegion  wire.Opcode = 2

	// region
	OpRegionDestroy wire.Opcode = 0

	// surface
	OpSurfaceDestroy             wire.Opcode = 0
	OpSurfaceAttach              wire.Opcode = 1
	OpSurfaceDamage              wire.Opcode = 2
	OpSurfaceFrame               wire.Opcode = 3
	OpSurfaceSetOpaqueRegion     wire.Opcode = 4
	OpSurfaceSetInputRegion      wire.Opcode = 5
	OpSurfaceCommit              wire.Opcode = 6
	OpSurfaceSetBufferTransform  wire.Opcode = 7
	OpSurfaceSetBufferScale      wire.Opcode = 8
	OpSurfaceDamageBuffer        wire.Opcode = 9

	// blob_factory
	OpBlobFactoryDestroy      wire.Opcode = 0
	OpBlobFactoryCreateBuffer wire.Opcode = 1

	// buffer
	OpBufferDestroy    wire.Opcode = 0
	OpBufferEventComplete wire.Opcode = 0

	// seat
	OpSeatGetPointer  wire.Opcode = 0
	OpSeatGetKeyboard wire.Opcode = 1
	OpSeatGetTouch    wire.Opcode = 2
	OpSeatRelease     wire.Opcode = 3

	OpSeatEventCapabilities wire.Opcode = 0

	// pointer
	OpPointerSetCursor wire.Opcode = 0
	OpPointerRelease   wire.Opcode = 1

	OpPointerEventEnter  wire.Opcode = 0
	OpPointerEventLeave  wire.Opcode = 1
	OpPointerEventMotion wire.Opcode = 2
	OpPointerEventButton wire.Opcode = 3
	OpPointerEventAxis   wire.Opcode = 4

	// touch
	OpTouchRelease wire.Opcode = 0

	OpTouchEventDown   wire.Opcode = 0
	OpTouchEventUp     wire.Opcode = 1
	OpTouchEventMotion wire.Opcode = 2
	OpTouchEventFrame  wire.Opcode = 3
	OpTouchEventCancel wire.Opcode = 4

	// keyboard: stub interface, no requests beyond implicit creation

	// ivi_app_id
	OpIviAppIDDestroy       wire.Opcode = 0
	OpIviAppIDSurfaceCreate wire.Opcode = 1

	// ivi_surface
	OpIviSurfaceDestroy wire.Opcode = 0
)

// Seat capability bitmask (§4.3.6): POINTER|TOUCH.
const (
	SeatCapPointer uint32 = 0x1
	SeatCapTouch   uint32 = 0x4
	SeatCapsSupported = SeatCapPointer | SeatCapTouch
)

// Protocol error codes posted on the registry/display objects (§7).
const (
	ErrCodeInvalidInterface uint32 = 0
	ErrCodeUnsupportedRequest uint32 = 0
)

// Interface names advertised by the registry, in the fixed order §4.3.1
// requires.
const (
	IfaceCompositor  = "wthp_compositor"
	IfaceIviAppID    = "wthp_ivi_app_id"
	IfaceSeat        = "wthp_seat"
	IfaceBlobFactory = "wthp_blob_factory"
)

// Versions advertised alongside each global, per §4.3.1.
const (
	VersionCompositor  = 4
	VersionIviAppID    = 1
	VersionSeat        = 4
	VersionBlobFactory = 4
)
