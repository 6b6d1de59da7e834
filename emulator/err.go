package emulator

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	ErrDeadlock       = errors.New(f("deadlock: no machine can make progress"))
	ErrAddressInvalid = errors.New(f("network address invalid"))
	ErrPacketSize     = errors.New(f("network packet size invalid"))
	ErrNoSnapshot     = errors.New(f("no saved state"))
)

// NODE_NONE marks a runtime error from a lone machine.
const NODE_NONE = -1

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Node   int // Index of the machine in a pipeline or network, or NODE_NONE.
	Ip     int
	LineNo int // Source line, when the program listing is known.
	Err    error
}

func (err *ErrRuntime) Error() string {
	switch {
	case err.LineNo > 0:
		return f("line %d %v", err.LineNo, err.Err)
	case err.Node >= 0:
		return f("node %d %v", err.Node, err.Err)
	default:
		return f("ip %d %v", err.Ip, err.Err)
	}
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
