package machine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/intcode/channel"
)

func assemble(t *testing.T, program ...string) (prog *Program) {
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(0, len(prog.Memory()))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%d", MEMORY_LIMIT), asm.Equate["MEMORY_LIMIT"])
	assert.Equal(fmt.Sprintf("%d", NETWORK_EMPTY), asm.Equate["NETWORK_EMPTY"])
}

func TestAssemblerEcho(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"; Echo input until a zero is read.",
		"loop:\tin [value]",
		"\tjz [value] done",
		"\tout [value] ; echo",
		"\tjnz 1 loop",
		"done:\thlt",
		"value:\t.data 0",
	)

	expected := []Opcode{
		{2, 0, []string{"in", "[value]"}, []int64{3, 11}, map[int]string{1: "value"}},
		{3, 2, []string{"jz", "[value]", "done"}, []int64{1006, 11, 10}, map[int]string{1: "value", 2: "done"}},
		{4, 5, []string{"out", "[value]"}, []int64{4, 11}, map[int]string{1: "value"}},
		{5, 7, []string{"jnz", "1", "loop"}, []int64{1105, 1, 0}, map[int]string{2: "loop"}},
		{6, 10, []string{"hlt"}, []int64{99}, nil},
		{7, 11, []string{".data", "0"}, []int64{0}, nil},
	}
	assert.Equal(expected, prog.Opcodes)

	mem := prog.Memory()
	assert.Equal(Memory{3, 11, 1006, 11, 10, 4, 11, 1105, 1, 0, 99, 0}, mem)

	m := NewFromMemory(mem, 0)
	outputs, ok := collect(m, 5, 7, 0)
	assert.True(ok)
	assert.Equal([]int64{5, 7}, outputs)
}

func TestAssemblerOperands(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line     string
		expected []int64
	}){
		{"out 5", []int64{104, 5}},
		{"out -5", []int64{104, -5}},
		{"out 0x10", []int64{104, 16}},
		{"out [7]", []int64{4, 7}},
		{"out [rb]", []int64{204, 0}},
		{"out [rb+3]", []int64{204, 3}},
		{"out [rb-3]", []int64{204, -3}},
		{"add [rb-1] 'A' [rb+2]", []int64{21201, -1, 65, 2}},
		{"mul 2, 3, [rb]", []int64{21102, 2, 3, 0}},
		{"in [rb+1]", []int64{203, 1}},
		{"out '\\n'", []int64{104, 10}},
		{"out '\\''", []int64{104, 39}},
		{"out ';' ; comment", []int64{104, 59}},
		{"jt 1 2", []int64{1105, 1, 2}},
		{"jf 0 2", []int64{1106, 0, 2}},
		{"halt", []int64{99}},
		{"lt 1 [2] [3]", []int64{107, 1, 2, 3}},
		{"eq [1] 2 [rb+3]", []int64{21008, 1, 2, 3}},
		{"arb $(3*10)", []int64{109, 30}},
		{".data 1, -2, 0x3", []int64{1, -2, 3}},
	}

	for _, entry := range table {
		prog := assemble(t, entry.line)
		assert.Equal(Memory(entry.expected), prog.Memory(), entry.line)
	}
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".equ N 3",
		".equ ALIAS N",
		"arb $(N*10)",
		"out ALIAS",
		"out LINENO",
		"out NETWORK_EMPTY",
	)
	assert.Equal(Memory{109, 30, 104, 3, 104, 5, 104, -1}, prog.Memory())

	asm := &Assembler{}
	asm.Predefine("START", "5")
	asm.Predefine("START", "6")
	prog, err := asm.Parse(strings.NewReader("out START"))
	assert.NoError(err)
	assert.Equal(Memory{104, 6}, prog.Memory())
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"top: next: hlt",
		"out $(next+1)",
		"jnz 1 end",
		"end: msg: .ascii \"Hi; there\"",
		"out [msg]",
	)

	mem := prog.Memory()
	assert.Equal(Memory{99, 104, 1, 1105, 1, 6}, mem[:6])
	assert.Equal("Hi; there", func() string {
		text := make([]byte, 9)
		for n := range text {
			text[n] = byte(mem[6+n])
		}
		return string(text)
	}())
	assert.Equal(Memory{4, 6}, mem[15:])
}

func TestAssemblerAsciiRun(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"loop: out [rb+text]",
		"arb 1",
		"jnz [rb+text] loop",
		"hlt",
		"text: .ascii \"ok\\n\"",
		".data 0",
	)

	out := &strings.Builder{}
	m := NewFromMemory(prog.Memory(), 0)
	assert.True(m.Run(nil, &channel.Ascii{Output: out}))
	assert.Equal("ok\n", out.String())
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		program string
		err     error
		lineno  int
	}){
		{"foo 1", ErrInstructionInvalid, 1},
		{"hlt\nadd 1 2", ErrOpcodeValueMissing, 2},
		{"out 1 2", ErrOpcodeExtraArgs, 1},
		{"add 1 2 3", ErrTargetInvalid, 1},
		{"in 3", ErrTargetInvalid, 1},
		{".equ A", ErrEquateSyntax, 1},
		{".equ A 1\n.equ A 2", ErrEquateDuplicate, 2},
		{"x: hlt\nx: hlt", ErrLabelDuplicate, 2},
		{"1x: hlt", ErrOperandInvalid, 1},
		{"out [rb-foo]", ErrOperandInvalid, 1},
		{"out []", ErrOperandInvalid, 1},
		{".data", ErrOpcodeValueMissing, 1},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.program))
		assert.ErrorIs(err, entry.err, entry.program)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.program) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.program)
		}
	}

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("hlt\n\njnz 1 nowhere"))
	var missing ErrLabelMissing
	assert.True(errors.As(err, &missing))
	assert.Equal(ErrLabelMissing("nowhere"), missing)
	var syntax *ErrSyntax
	if assert.True(errors.As(err, &syntax)) {
		assert.Equal(3, syntax.LineNo)
		assert.Equal("jnz 1 nowhere", syntax.Line)
	}

	_, err = asm.Parse(strings.NewReader("out 1x"))
	var value ErrParseValue
	assert.True(errors.As(err, &value))
	assert.Equal(ErrParseValue("1x"), value)

	_, err = asm.Parse(strings.NewReader("out $(1/0)"))
	assert.Error(err)

	_, err = asm.Parse(strings.NewReader("out $(\"text\")"))
	var expr ErrParseExpression
	assert.True(errors.As(err, &expr))

	_, err = asm.Parse(strings.NewReader(".ascii \"unterminated"))
	assert.True(errors.As(err, &value))
}
