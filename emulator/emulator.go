// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"github.com/ezrec/intcode/channel"
	"github.com/ezrec/intcode/machine"
)

const (
	DEFAULT_STAGES      = 5 // Default pipeline length.
	DEFAULT_PACKET_SIZE = 3 // Default network packet length, address included.
)

// Emulator state. A machine with its program listing, and a tape.
type Emulator struct {
	Verbose          bool             // If set, enables verbose logging.
	*machine.Machine                  // Reference to the machine.
	Program          *machine.Program // Program listing, if known.

	Tape channel.Tape // Tape for input and output words.
}

// NewEmulator creates a new emulator for a copy of mem.
func NewEmulator(mem machine.Memory, mode machine.Mode) (emu *Emulator) {
	emu = &Emulator{
		Machine: machine.NewFromMemory(mem, mode),
		Program: &machine.Program{},
	}

	return
}

// NewEmulatorFromProgram creates a new emulator for an assembled program.
func NewEmulatorFromProgram(prog *machine.Program, mode machine.Mode) (emu *Emulator) {
	emu = NewEmulator(prog.Memory(), mode)
	emu.Program = prog

	return
}

// Reset the emulator to the start of its program, and rewind the tape.
func (emu *Emulator) Reset() {
	emu.Machine.Reset()
	emu.Tape.Rewind()
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() (lineno int) {
	dbg := emu.Program.Debug(emu.Machine.Ip)
	if dbg.Opcode != nil {
		lineno = dbg.Opcode.LineNo
	}

	return
}

// Tick runs the machine to its next output, and writes it to the tape.
// Done is set once the machine halts, or blocks waiting for input.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Machine.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Node: NODE_NONE, Ip: emu.Machine.Ip, LineNo: lineno, Err: err}
		}
	}()

	value, status := emu.Machine.RunToOutput(&emu.Tape)
	switch status {
	case machine.STATUS_CONTINUE:
		err = emu.Tape.Send(value)
	case machine.STATUS_ERROR:
		err = emu.Machine.Err
		done = true
	default:
		done = true
	}

	// A malformed tape starves the machine; report the tape error instead.
	if emu.Tape.Err != nil {
		err = emu.Tape.Err
		done = true
	}

	return
}

// Run ticks until done.
func (emu *Emulator) Run() (err error) {
	for {
		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}
}
