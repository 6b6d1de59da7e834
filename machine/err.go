package machine

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Machine errors
	ErrInvalidOpcode   = errors.New(f("invalid opcode"))
	ErrInvalidMode     = errors.New(f("invalid parameter mode"))
	ErrOutOfRangeRead  = errors.New(f("read out of range"))
	ErrOutOfRangeWrite = errors.New(f("write out of range"))
	ErrImmediateWrite  = errors.New(f("immediate mode write target"))
	ErrMissingHalt     = errors.New(f("missing halt instruction"))
	ErrMissingInput    = errors.New(f("missing input"))
	ErrNotRunnable     = errors.New(f("invalid machine state"))
	ErrOutputFailed    = errors.New(f("output failed"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrFault records why a machine entered STATUS_ERROR.
type ErrFault struct {
	Ip   int   // Address of the failing instruction.
	Word int64 // Instruction word at Ip, if there was one.
	Err  error
}

func (err *ErrFault) Error() string {
	return f("fault at %v (word %v): %v", err.Ip, err.Word, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
