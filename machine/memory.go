package machine

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/ezrec/intcode/channel"
)

// MEMORY_LIMIT is the first address that is never valid.
const MEMORY_LIMIT = 1 << 20

// Memory is the word addressed memory of a machine.
// Addresses past the end of the slice, but below MEMORY_LIMIT, read as
// zero; storing to one grows the slice.
type Memory []int64

// ParseMemory reads comma-delimited program text.
func ParseMemory(r io.Reader) (mem Memory, err error) {
	tape := &channel.Tape{Input: r}
	for {
		value, ok := tape.Receive()
		if !ok {
			break
		}
		mem = append(mem, value)
	}

	err = tape.Err

	return
}

// Load reads the word at addr.
func (mem Memory) Load(addr int64) (value int64, err error) {
	if addr < 0 || addr >= MEMORY_LIMIT {
		err = ErrOutOfRangeRead
		return
	}

	if addr < int64(len(mem)) {
		value = mem[addr]
	}

	return
}

// Store writes the word at addr, growing the memory with zeros as needed.
func (mem *Memory) Store(addr int64, value int64) (err error) {
	if addr < 0 || addr >= MEMORY_LIMIT {
		err = ErrOutOfRangeWrite
		return
	}

	if size := len(*mem); addr >= int64(size) {
		*mem = slices.Grow(*mem, int(addr)+1-size)
		*mem = (*mem)[:addr+1]
		clear((*mem)[size:])
	}
	(*mem)[addr] = value

	return
}

// Clone returns an independent copy of the memory.
func (mem Memory) Clone() Memory {
	return slices.Clone(mem)
}

// Format writes the memory as program text.
func (mem Memory) Format(w io.Writer) (err error) {
	tape := &channel.Tape{Output: w}
	for _, value := range mem {
		err = tape.Send(value)
		if err != nil {
			return
		}
	}
	return
}

// String returns the memory as program text.
func (mem Memory) String() string {
	words := make([]string, len(mem))
	for n, value := range mem {
		words[n] = strconv.FormatInt(value, 10)
	}
	return strings.Join(words, ",")
}
