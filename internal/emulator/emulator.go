// Package emulator drives the core: one CPU, one Bus, and the frame
// loop that ties them together (spec.md §4.11). The core itself never
// touches a filesystem or a clock; Machine's only I/O-shaped
// dependency is the optional save-persistence callback a frontend
// supplies.
package emulator

import (
	"GoBA/internal/bus"
	"GoBA/internal/cpu"
)

// CyclesPerFrame is the fixed per-frame cycle budget: 228 scanlines of
// 1232 cycles each (spec.md §4.11, §8 property 5).
const CyclesPerFrame = 228 * 1232

// SaveFunc persists save-backend bytes for the frontend; it returns an
// error on I/O failure, which Machine treats per spec.md §7: the
// in-memory save is left intact and the write is retried on the next
// auto-save.
type SaveFunc func(data []byte) error

// Machine owns the CPU and Bus and exposes the single entry point a
// frontend drives: RunFrame.
type Machine struct {
	CPU *cpu.CPU
	Bus *bus.Bus

	onAutoSave SaveFunc
}

// New assembles a Machine from an already-wired CPU and Bus.
func New(c *cpu.CPU, b *bus.Bus) *Machine {
	return &Machine{CPU: c, Bus: b}
}

// SetAutoSave installs (or clears, with nil) the callback invoked by
// RunFrame whenever the cartridge's save back-end has been modified
// since the last call.
func (m *Machine) SetAutoSave(fn SaveFunc) {
	m.onAutoSave = fn
}

// RunFrame executes instructions and peripheral steps until the
// per-frame cycle budget is exhausted, then runs auto-save. Each
// iteration retires exactly one CPU step, feeds its cycle cost to
// every peripheral, and requests IRQ entry on the next step if the
// interrupt controller now has a pending, enabled source — mirroring
// spec.md §4.11 and the single-threaded, step-driven ordering in §5.
func (m *Machine) RunFrame() {
	var spent uint32
	for spent < CyclesPerFrame {
		cycles := m.CPU.Step()
		m.Bus.StepPeripherals(cycles)
		if m.Bus.Interrupt.Pending() {
			m.CPU.RequestInterrupt()
		}
		spent += cycles
	}
	m.autoSave()
}

// autoSave is a no-op unless the cartridge's save back-end has pending
// modifications (spec.md §4.11). A failed write leaves the modified
// flag set so the next frame retries it.
func (m *Machine) autoSave() {
	if m.onAutoSave == nil || !m.Bus.Cartridge.Modified() {
		return
	}
	if err := m.onAutoSave(m.Bus.Cartridge.SaveBytes()); err != nil {
		return
	}
	m.Bus.Cartridge.ClearModified()
}
