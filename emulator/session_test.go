package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/intcode/machine"
)

// Echo each line, followed by a count of lines. Halts after 9 lines.
var sessionProgram = []string{
	"start:\tout '>'",
	"loop:\tin [char]",
	"\teq [char] '\\n' [flag]",
	"\tjnz [flag] done",
	"\tout [char]",
	"\tjnz 1 loop",
	"done:\tadd [count] 1 [count]",
	"\tadd [count] '0' [digit]",
	"\tout [digit]",
	"\tout '\\n'",
	"\teq [count] 9 [flag]",
	"\tjz [flag] start",
	"\thlt",
	"char:\t.data 0",
	"flag:\t.data 0",
	"count:\t.data 0",
	"digit:\t.data 0",
}

func TestSession(t *testing.T) {
	assert := assert.New(t)

	ss := NewSession(doAssemble(t, sessionProgram).Memory())
	assert.Equal(1, ss.Saves())

	input := strings.NewReader("ab\nsave\ncd\nload\nef\nquit\ngh\n")
	output := &bytes.Buffer{}

	assert.NoError(ss.Run(input, output))
	assert.Equal(">ab1\n>Saved!\ncd2\n>Loaded!\nef2\n>", output.String())
	assert.Equal(1, ss.Saves())
	assert.Equal(machine.STATUS_BLOCKED, ss.Status)
}

func TestSessionExit(t *testing.T) {
	assert := assert.New(t)

	ss := NewSession(doAssemble(t, sessionProgram).Memory())
	ss.Prompt = "? "

	output := &bytes.Buffer{}
	assert.NoError(ss.Run(strings.NewReader("x\nexit now\n"), output))
	assert.Equal(">? x1\n>? ", output.String())

	// End of user input ends the session.
	output.Reset()
	assert.NoError(ss.Run(strings.NewReader("y\n"), output))
	assert.Equal("? y2\n>? ", output.String())
}

func TestSessionHalt(t *testing.T) {
	assert := assert.New(t)

	ss := NewSession(doAssemble(t, sessionProgram).Memory())

	lines := strings.Repeat("z\n", 9)
	output := &bytes.Buffer{}
	assert.NoError(ss.Run(strings.NewReader(lines), output))
	assert.True(strings.HasSuffix(output.String(), ">z9\n[Program terminated]\n"))
	assert.Equal(machine.STATUS_HALTED, ss.Status)
}

func TestSessionLoad(t *testing.T) {
	assert := assert.New(t)

	ss := NewSession(doAssemble(t, sessionProgram).Memory())

	// Loading the initial state restarts the program.
	output := &bytes.Buffer{}
	assert.NoError(ss.Run(strings.NewReader("a\nload\nb\n"), output))
	assert.Equal(">a1\n>Loaded!\n>b1\n>", output.String())
	assert.Equal(1, ss.Saves())

	ss.saves = nil
	assert.ErrorIs(ss.Load(), ErrNoSnapshot)
}

func TestSessionError(t *testing.T) {
	assert := assert.New(t)

	ss := NewSession(machine.Memory{3, 0, 98})
	err := ss.Run(strings.NewReader("a\n"), &bytes.Buffer{})
	assert.ErrorIs(err, machine.ErrInvalidOpcode)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(NODE_NONE, rt.Node)
		assert.Equal(2, rt.Ip)
	}
	assert.Regexp("^ip 2 ", err.Error())
}
