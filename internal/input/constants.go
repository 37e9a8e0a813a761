package input

// Button and axis encodings carried over from the original
// wth-receiver-seat.c upcall surface (SPEC_FULL §C.1): the host input
// backend hands these straight through rather than the core inventing
// its own numbering.
const (
	ButtonLeft   uint32 = 0x110 // BTN_LEFT
	ButtonRight  uint32 = 0x111 // BTN_RIGHT
	ButtonMiddle uint32 = 0x112 // BTN_MIDDLE
)

// Button state, as carried on pointer.button's state argument.
const (
	ButtonStateReleased uint32 = 0
	ButtonStatePressed  uint32 = 1
)

// Axis identifies the scroll axis on pointer.axis.
const (
	AxisVerticalScroll   uint32 = 0 // REL_WHEEL
	AxisHorizontalScroll uint32 = 1 // REL_HWHEEL
)
