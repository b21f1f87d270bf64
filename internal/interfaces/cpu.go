package interfaces

// CPUInterface represents the ARM7TDMI CPU component.
type CPUInterface interface {
	Registers() RegistersInterface
	Bus() BusInterface
	Reset()
	// Step retires exactly one architectural instruction (or one IRQ
	// dispatch) and returns its cycle cost.
	Step() uint32
	// RequestInterrupt performs IRQ entry before the next instruction,
	// provided the interrupt controller reports a pending request.
	RequestInterrupt()
}
