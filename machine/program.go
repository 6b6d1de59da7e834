package machine

import (
	"iter"
)

// Opcode is a line of assembled code with its source location and the
// words it generated.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []int64
	Links  map[int]string // Label to add to each linked Codes index.
}

// Program is the output of the assembler.
type Program struct {
	Opcodes []Opcode
}

// Debug locates a word of a program.
type Debug struct {
	*Opcode
	Index int
}

// Debug returns the opcode that generated the word at ip.
// The Opcode is nil if ip is not part of the program.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Codes returns an iterator over each address and word of the program.
func (prog *Program) Codes() iter.Seq2[int, int64] {
	return func(yield func(ip int, code int64) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Ip+n, code) {
					return
				}
			}
		}
	}
}

// Memory returns the memory image of the program.
func (prog *Program) Memory() (mem Memory) {
	for ip, code := range prog.Codes() {
		for len(mem) < ip {
			mem = append(mem, 0)
		}
		mem = append(mem, code)
	}

	return
}
