// Package machine implements the Intcode interpreter and its assembler.
//
// A Machine owns a memory of signed 64-bit words, an instruction pointer
// and a relative base. Each instruction word carries a two digit opcode in
// its low digits, and one addressing mode digit per parameter above that:
// 0 for position, 1 for immediate, 2 for relative to the base.
//
// Execution is cooperative. Step and RunToOutput return to the caller on
// every output, and on input starvation the machine either blocks
// (MODE_INTERACTIVE), reads -1 (MODE_NETWORK), or fails. Blocking is a
// returned status, never a suspended goroutine, so callers can schedule
// many machines from a single loop and Clone them for save and restore.
//
// The assembler provides a small assembly language for the instruction
// set, supporting labels, equates, data and compile-time expressions.
package machine
