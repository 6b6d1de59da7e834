package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/intcode/channel"
	"github.com/ezrec/intcode/machine"
)

func doAssemble(t *testing.T, program []string) (prog *machine.Program) {
	asm := &machine.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(machine.Memory{99}, 0)

	assert.False(emu.Verbose)
	assert.NotNil(emu.Machine)
	assert.Equal(0, emu.LineNo())

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.Equal(machine.STATUS_HALTED, emu.Status)
}

func TestEmulatorQuine(t *testing.T) {
	assert := assert.New(t)

	const quine = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"

	mem, err := machine.ParseMemory(strings.NewReader(quine))
	assert.NoError(err)

	emu := NewEmulator(mem, 0)
	output := &bytes.Buffer{}
	emu.Tape.Output = output

	ticks := 0
	for {
		done, err := emu.Tick()
		assert.NoError(err)
		if done {
			break
		}
		ticks++
	}
	assert.Equal(len(mem), ticks)
	assert.Equal(quine, output.String())

	emu.Reset()
	assert.Equal(0, emu.Ip)
	assert.Equal(machine.STATUS_CONTINUE, emu.Status)
}

func TestEmulatorTape(t *testing.T) {
	assert := assert.New(t)

	prog := doAssemble(t, []string{
		"loop: in [100]",
		"mul [100] 2 [100]",
		"out [100]",
		"jnz 1 loop",
	})

	emu := NewEmulatorFromProgram(prog, machine.MODE_INTERACTIVE)
	emu.Tape.Input = strings.NewReader("1, 2\n3")
	output := &bytes.Buffer{}
	emu.Tape.Output = output

	assert.Equal(1, emu.LineNo())
	assert.NoError(emu.Run())
	assert.Equal("2,4,6", output.String())
	assert.Equal(machine.STATUS_BLOCKED, emu.Status)
	assert.Equal(1, emu.LineNo())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	prog := doAssemble(t, []string{
		"out 1",
		".data 98",
	})

	emu := NewEmulatorFromProgram(prog, 0)
	output := &bytes.Buffer{}
	emu.Tape.Output = output

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal("1", output.String())

	done, err = emu.Tick()
	assert.True(done)
	assert.ErrorIs(err, machine.ErrInvalidOpcode)

	var rt *ErrRuntime
	if assert.True(errors.As(err, &rt)) {
		assert.Equal(2, rt.LineNo)
		assert.Equal(2, rt.Ip)
	}

	// Batch input from an empty tape.
	emu = NewEmulator(machine.Memory{3, 0, 99}, 0)
	emu.Tape.Input = strings.NewReader("")
	_, err = emu.Tick()
	assert.ErrorIs(err, machine.ErrMissingInput)
}

func TestEmulatorTapeMalformed(t *testing.T) {
	assert := assert.New(t)

	prog := doAssemble(t, []string{
		"in [20]",
		"out [20]",
		"in [20]",
		"out [20]",
		"hlt",
	})

	emu := NewEmulatorFromProgram(prog, 0)
	emu.Tape.Input = strings.NewReader("5,x")
	output := &bytes.Buffer{}
	emu.Tape.Output = output

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal("5", output.String())

	done, err = emu.Tick()
	assert.True(done)
	assert.NotErrorIs(err, machine.ErrMissingInput)

	var parse channel.ErrParseNumber
	if assert.ErrorAs(err, &parse) {
		assert.Equal(channel.ErrParseNumber("x"), parse)
	}

	var rt *ErrRuntime
	if assert.ErrorAs(err, &rt) {
		assert.Equal(3, rt.LineNo)
		assert.Equal(4, rt.Ip)
	}
	assert.Equal(machine.STATUS_ERROR, emu.Status)
}

func TestEmulatorErrorText(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(machine.Memory{98}, 0)
	_, err := emu.Tick()
	assert.Error(err)
	assert.Regexp("^ip 0 ", err.Error())

	prog := doAssemble(t, []string{
		".data 98",
	})
	emu = NewEmulatorFromProgram(prog, 0)
	_, err = emu.Tick()
	assert.Regexp("^line 1 ", err.Error())

	err = &ErrRuntime{Node: 2, Ip: 7, Err: machine.ErrInvalidOpcode}
	assert.Regexp("^node 2 ", err.Error())
}
