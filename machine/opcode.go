package machine

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Status is the execution state of a machine.
type Status int

const (
	STATUS_CONTINUE = Status(0) // continue
	STATUS_HALTED   = Status(1) // halted
	STATUS_BLOCKED  = Status(2) // blocked
	STATUS_ERROR    = Status(3) // error
)

func (st Status) String() string {
	switch st {
	case STATUS_CONTINUE:
		return "continue"
	case STATUS_HALTED:
		return "halted"
	case STATUS_BLOCKED:
		return "blocked"
	case STATUS_ERROR:
		return "error"
	}
	return fmt.Sprintf("Status(%d)", int(st))
}

// Mode is a set of behavioral options, fixed when a machine is built.
// Only the handling of an input read with no input available differs.
type Mode uint

const (
	MODE_LOAD_FILE   = Mode(1 << 0) // Program source names a file.
	MODE_INTERACTIVE = Mode(1 << 1) // Block on missing input, resumable.
	MODE_NETWORK     = Mode(1 << 2) // Read -1 on missing input.
)

// Has returns true if all of the options in mask are set.
func (mode Mode) Has(mask Mode) bool {
	return (mode & mask) == mask
}

func (mode Mode) String() string {
	var names []string
	for _, opt := range []struct {
		mode Mode
		name string
	}{
		{MODE_LOAD_FILE, "load"},
		{MODE_INTERACTIVE, "interactive"},
		{MODE_NETWORK, "network"},
	} {
		if mode.Has(opt.mode) {
			names = append(names, opt.name)
		}
	}
	if len(names) == 0 {
		return "batch"
	}
	return strings.Join(names, "|")
}

// CodeOp is the operation selected by the two low decimal digits of a word.
type CodeOp int

const (
	OP_ADD   = CodeOp(1)  // add
	OP_MUL   = CodeOp(2)  // mul
	OP_IN    = CodeOp(3)  // in
	OP_OUT   = CodeOp(4)  // out
	OP_JNZ   = CodeOp(5)  // jnz
	OP_JZ    = CodeOp(6)  // jz
	OP_LT    = CodeOp(7)  // lt
	OP_EQ    = CodeOp(8)  // eq
	OP_ARB   = CodeOp(9)  // arb
	OP_HALT  = CodeOp(99) // hlt
	OP_UNSET = CodeOp(0)
)

// opInfo describes the parameters of an operation. The last parameter is
// written when hasTarget is set.
type opInfo struct {
	name      string
	params    int
	hasTarget bool
}

var opTable = map[CodeOp]opInfo{
	OP_ADD:  {"add", 3, true},
	OP_MUL:  {"mul", 3, true},
	OP_IN:   {"in", 1, true},
	OP_OUT:  {"out", 1, false},
	OP_JNZ:  {"jnz", 2, false},
	OP_JZ:   {"jz", 2, false},
	OP_LT:   {"lt", 3, true},
	OP_EQ:   {"eq", 3, true},
	OP_ARB:  {"arb", 1, false},
	OP_HALT: {"hlt", 0, false},
}

// Valid returns true for a known operation.
func (op CodeOp) Valid() bool {
	_, ok := opTable[op]
	return ok
}

// Params returns the number of parameters that follow the instruction word.
func (op CodeOp) Params() int {
	return opTable[op].params
}

// HasTarget returns true if the last parameter is a write target.
func (op CodeOp) HasTarget() bool {
	return opTable[op].hasTarget
}

func (op CodeOp) String() string {
	info, ok := opTable[op]
	if !ok {
		return fmt.Sprintf("op%d", int(op))
	}
	return info.name
}

// CodeMode is a parameter addressing mode.
type CodeMode int

const (
	PARAM_POSITION  = CodeMode(0) // position
	PARAM_IMMEDIATE = CodeMode(1) // immediate
	PARAM_RELATIVE  = CodeMode(2) // relative
)

// Valid returns true for a known addressing mode.
func (mode CodeMode) Valid() bool {
	return mode >= PARAM_POSITION && mode <= PARAM_RELATIVE
}

func (mode CodeMode) String() string {
	switch mode {
	case PARAM_POSITION:
		return "position"
	case PARAM_IMMEDIATE:
		return "immediate"
	case PARAM_RELATIVE:
		return "relative"
	}
	return fmt.Sprintf("CodeMode(%d)", int(mode))
}

// Operand formats a parameter word in assembler syntax.
func (mode CodeMode) Operand(word int64) string {
	switch mode {
	case PARAM_POSITION:
		return fmt.Sprintf("[%d]", word)
	case PARAM_RELATIVE:
		switch {
		case word == 0:
			return "[rb]"
		case word < 0:
			return fmt.Sprintf("[rb%d]", word)
		default:
			return fmt.Sprintf("[rb+%d]", word)
		}
	}
	return fmt.Sprintf("%d", word)
}

// Code is a single instruction word.
type Code int64

// MakeCode creates an instruction word from an operation and its
// parameter modes.
func MakeCode(op CodeOp, modes ...CodeMode) Code {
	word := int64(op)
	scale := int64(100)
	for _, mode := range modes {
		word += int64(mode) * scale
		scale *= 10
	}
	return Code(word)
}

// Op returns the operation of the instruction word.
func (code Code) Op() CodeOp {
	if code < 0 {
		return OP_UNSET
	}
	return CodeOp(code % 100)
}

// Mode returns the addressing mode of parameter n, counting from 0.
func (code Code) Mode(n int) CodeMode {
	word := int64(code) / 100
	for range n {
		word /= 10
	}
	return CodeMode(word % 10)
}

// Decode validates the instruction word, returning the operation and the
// mode of each of its parameters.
func (code Code) Decode() (op CodeOp, modes [3]CodeMode, err error) {
	op = code.Op()
	if !op.Valid() {
		err = ErrInvalidOpcode
		return
	}

	for n := range op.Params() {
		modes[n] = code.Mode(n)
		if !modes[n].Valid() {
			err = errors.Join(ErrInvalidOpcode, ErrInvalidMode)
			return
		}
	}

	return
}

// Disassemble formats the instruction at ip. The size is the number of
// words consumed; an undecodable or truncated instruction is shown as data
// with a size of 1.
func Disassemble(mem Memory, ip int) (text string, size int) {
	if ip < 0 || ip >= len(mem) {
		return
	}

	word := mem[ip]
	op, modes, err := Code(word).Decode()
	if err != nil || ip+op.Params() >= len(mem) {
		text = fmt.Sprintf(".data %d", word)
		size = 1
		return
	}

	words := []string{op.String()}
	for n := range op.Params() {
		words = append(words, modes[n].Operand(mem[ip+1+n]))
	}

	text = strings.Join(words, " ")
	size = 1 + op.Params()

	return
}

// Listing returns an iterator over the disassembly of mem, keyed by address.
// Data words are indistinguishable from code, so the listing follows
// instruction sizes from address 0.
func Listing(mem Memory) iter.Seq2[int, string] {
	return func(yield func(ip int, text string) bool) {
		for ip := 0; ip < len(mem); {
			text, size := Disassemble(mem, ip)
			if !yield(ip, text) {
				return
			}
			ip += size
		}
	}
}
