// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/intcode/channel"
)

// Input is the source of words for the input instruction.
type Input channel.Receiver

// Output is the sink for words of the output instruction.
type Output channel.Sender

const (
	OUTPUT_NONE   = int64(-1) // RunToOutput value when nothing was output.
	NETWORK_EMPTY = int64(-1) // Input word read by MODE_NETWORK when starved.
)

// Machine is the state of a single Intcode interpreter.
// A Machine shares nothing with any other; use Clone to branch or save it.
type Machine struct {
	Verbose bool // Set to enable instruction tracing.

	Memory Memory // Program and data.
	Ip     int    // Address of the next instruction.
	Base   int64  // Relative base.
	Status Status // Execution state.
	Mode   Mode   // Behavioral options.

	Err   error // Cause of STATUS_ERROR, as an *ErrFault.
	Ticks int   // Instructions executed since the last reset.
}

// New creates a machine from program text. With MODE_LOAD_FILE set the
// source is the name of a file holding the text.
func New(source string, mode Mode) (m *Machine, err error) {
	if !mode.Has(MODE_LOAD_FILE) {
		m, err = NewFromReader(strings.NewReader(source), mode)
		return
	}

	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	m, err = NewFromReader(inf, mode)

	return
}

// Load creates a machine from the program text in a file of fsys.
func Load(fsys fs.FS, name string, mode Mode) (m *Machine, err error) {
	inf, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	m, err = NewFromReader(inf, mode|MODE_LOAD_FILE)

	return
}

// NewFromReader creates a machine from the program text read from r.
func NewFromReader(r io.Reader, mode Mode) (m *Machine, err error) {
	mem, err := ParseMemory(r)
	if err != nil {
		return
	}

	m = &Machine{
		Memory: mem,
		Mode:   mode,
	}

	return
}

// NewFromMemory creates a machine with a copy of mem.
func NewFromMemory(mem Memory, mode Mode) (m *Machine) {
	m = &Machine{
		Memory: mem.Clone(),
		Mode:   mode,
	}

	return
}

// Clone returns a deep copy of the machine.
func (m *Machine) Clone() *Machine {
	clone := *m
	clone.Memory = m.Memory.Clone()
	return &clone
}

// Restore replaces the machine state with a deep copy of from.
func (m *Machine) Restore(from *Machine) {
	*m = *from.Clone()
}

// Reset rewinds execution to address 0. Memory is left as-is.
func (m *Machine) Reset() {
	m.Ip = 0
	m.Base = 0
	m.Status = STATUS_CONTINUE
	m.Err = nil
	m.Ticks = 0
}

// Peek reads memory, with the same address rules as the interpreter.
func (m *Machine) Peek(addr int64) (value int64, err error) {
	return m.Memory.Load(addr)
}

// Poke writes memory, growing it as needed.
func (m *Machine) Poke(addr int64, value int64) (err error) {
	return m.Memory.Store(addr, value)
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	regs := []string{"ip", "base", "status", "mode", "ticks", "memory"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "ip":
			strval = fmt.Sprintf("%d", m.Ip)
			if op, _ := Disassemble(m.Memory, m.Ip); len(op) != 0 {
				strval += " " + op
			}
		case "base":
			strval = fmt.Sprintf("%d", m.Base)
		case "status":
			strval = m.Status.String()
			if m.Err != nil {
				strval += fmt.Sprintf(" (%v)", m.Err)
			}
		case "mode":
			strval = m.Mode.String()
		case "ticks":
			strval = fmt.Sprintf("%d", m.Ticks)
		case "memory":
			strval = fmt.Sprintf("%d words", len(m.Memory))
		}
		text += fmt.Sprintf("% 7s: %v\n", reg, strval)
	}

	return
}

// fault moves the machine to STATUS_ERROR.
func (m *Machine) fault(err error) {
	fault := &ErrFault{Ip: m.Ip, Err: err}
	if m.Ip >= 0 && m.Ip < len(m.Memory) {
		fault.Word = m.Memory[m.Ip]
	}

	m.Status = STATUS_ERROR
	m.Err = fault

	if m.Verbose {
		log.Debugf("machine: %v", fault)
	}
}

// Tick fetches and executes a single instruction.
//
// Errors are returned as-is, and do not change the machine status; use
// Step for the status-driven interface.
func (m *Machine) Tick(in Input) (value int64, output bool, err error) {
	if m.Status == STATUS_BLOCKED && m.Mode.Has(MODE_INTERACTIVE) {
		m.Status = STATUS_CONTINUE
	}

	if m.Status != STATUS_CONTINUE {
		err = ErrNotRunnable
		return
	}

	if m.Ip < 0 || m.Ip >= len(m.Memory) {
		err = ErrMissingHalt
		return
	}

	code := Code(m.Memory[m.Ip])

	if m.Verbose {
		text, _ := Disassemble(m.Memory, m.Ip)
		log.Debugf("%05d: %v", m.Ip, text)
	}

	value, output, err = m.Execute(code, in)

	return
}

// Step executes a single instruction, and returns the output word (if
// any) and the resulting status.
//
// Under MODE_INTERACTIVE a blocked machine resumes the suspended input
// read. On a halted or failed machine Step does nothing.
func (m *Machine) Step(in Input) (value int64, output bool, status Status) {
	value, output, err := m.Tick(in)
	switch {
	case err == nil:
		// pass
	case errors.Is(err, ErrNotRunnable):
		if m.Verbose {
			log.Debugf("machine: %v: %v", err, m.Status)
		}
	default:
		m.fault(err)
	}

	status = m.Status
	return
}

// RunToOutput steps until an output is produced, or the machine stops.
// When stopped, value is OUTPUT_NONE.
func (m *Machine) RunToOutput(in Input) (value int64, status Status) {
	for {
		var output bool
		value, output, status = m.Step(in)
		if output {
			return
		}
		if status != STATUS_CONTINUE {
			value = OUTPUT_NONE
			return
		}
	}
}

// Run executes until the machine halts, fails or blocks, sending every
// output word to out. A nil out discards output.
//
// A blocked MODE_INTERACTIVE machine resumes where it stopped; any other
// machine restarts from address 0 with its current memory.
//
// Returns false if the machine failed.
func (m *Machine) Run(in Input, out Output) (ok bool) {
	if m.Status == STATUS_BLOCKED && m.Mode.Has(MODE_INTERACTIVE) {
		m.Status = STATUS_CONTINUE
	} else {
		m.Reset()
	}

	for m.Status == STATUS_CONTINUE {
		value, status := m.RunToOutput(in)
		if status != STATUS_CONTINUE {
			break
		}

		if m.Verbose {
			log.Debugf("machine: output %d", value)
		}

		if out == nil {
			continue
		}

		err := out.Send(value)
		if err != nil {
			m.fault(errors.Join(ErrOutputFailed, err))
		}
	}

	ok = m.Status != STATUS_ERROR

	return
}

// RunSimple runs the machine from the start with a single input word, and
// returns the first output word, or -1 if the run failed or had no output.
func (m *Machine) RunSimple(input int64) (result int64) {
	result = -1

	var outputs []int64
	out := channel.SenderFunc(func(value int64) error {
		outputs = append(outputs, value)
		return nil
	})

	if m.Run(channel.Values(input), out) && len(outputs) > 0 {
		result = outputs[0]
	}

	return
}

// read resolves a parameter as a value.
func (m *Machine) read(mode CodeMode, word int64) (value int64, err error) {
	switch mode {
	case PARAM_IMMEDIATE:
		value = word
	case PARAM_POSITION:
		value, err = m.Memory.Load(word)
	case PARAM_RELATIVE:
		value, err = m.Memory.Load(m.Base + word)
	default:
		err = errors.Join(ErrInvalidOpcode, ErrInvalidMode)
	}

	return
}

// target resolves a parameter as a write address.
func (m *Machine) target(mode CodeMode, word int64) (addr int64, err error) {
	switch mode {
	case PARAM_IMMEDIATE:
		err = errors.Join(ErrOutOfRangeWrite, ErrImmediateWrite)
		return
	case PARAM_POSITION:
		addr = word
	case PARAM_RELATIVE:
		addr = m.Base + word
	default:
		err = errors.Join(ErrInvalidOpcode, ErrInvalidMode)
		return
	}

	if addr < 0 || addr >= MEMORY_LIMIT {
		err = ErrOutOfRangeWrite
	}

	return
}

// Execute executes a single instruction word, as if it were at Ip.
//
// All parameters are resolved before anything is changed, so a failing
// instruction consumes no input and leaves memory untouched.
func (m *Machine) Execute(code Code, in Input) (value int64, output bool, err error) {
	op, modes, err := code.Decode()
	if err != nil {
		return
	}

	params := op.Params()
	next_ip := m.Ip + 1 + params

	var args [3]int64
	var dst int64
	for n := range params {
		index := m.Ip + 1 + n
		if index >= len(m.Memory) {
			err = ErrOutOfRangeRead
			return
		}
		word := m.Memory[index]
		if op.HasTarget() && n == params-1 {
			dst, err = m.target(modes[n], word)
		} else {
			args[n], err = m.read(modes[n], word)
		}
		if err != nil {
			return
		}
	}

	switch op {
	case OP_ADD:
		err = m.Memory.Store(dst, args[0]+args[1])
	case OP_MUL:
		err = m.Memory.Store(dst, args[0]*args[1])
	case OP_IN:
		var input int64
		var ok bool
		if in != nil {
			input, ok = in.Receive()
		}
		if !ok {
			switch {
			case m.Mode.Has(MODE_NETWORK):
				input = NETWORK_EMPTY
			case m.Mode.Has(MODE_INTERACTIVE):
				// Don't advance to next IP.
				m.Status = STATUS_BLOCKED
				return
			default:
				err = ErrMissingInput
				return
			}
		}
		if m.Verbose {
			log.Debugf("machine: input %d", input)
		}
		err = m.Memory.Store(dst, input)
	case OP_OUT:
		value = args[0]
		output = true
	case OP_JNZ:
		if args[0] != 0 {
			next_ip = int(args[1])
		}
	case OP_JZ:
		if args[0] == 0 {
			next_ip = int(args[1])
		}
	case OP_LT:
		err = m.Memory.Store(dst, boolWord(args[0] < args[1]))
	case OP_EQ:
		err = m.Memory.Store(dst, boolWord(args[0] == args[1]))
	case OP_ARB:
		m.Base += args[0]
	case OP_HALT:
		m.Status = STATUS_HALTED
		return
	}

	if err != nil {
		return
	}

	m.Ip = next_ip
	m.Ticks++

	return
}

func boolWord(cond bool) int64 {
	if cond {
		return 1
	}
	return 0
}
