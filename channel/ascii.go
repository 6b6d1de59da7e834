package channel

import (
	"fmt"
	"io"
	"iter"

	"github.com/ezrec/intcode/internal"
)

// ASCII_NEWLINE terminates every encoded line.
const ASCII_NEWLINE = int64('\n')

// encodeLine yields the byte codes of line, then a newline.
func encodeLine(line string) iter.Seq[int64] {
	return func(yield func(value int64) bool) {
		for n := range len(line) {
			if !yield(int64(line[n])) {
				return
			}
		}
		yield(ASCII_NEWLINE)
	}
}

// Encode returns the words for a sequence of text command lines.
// "Hello" becomes 72,101,108,108,111,10.
func Encode(lines ...string) iter.Seq[int64] {
	seqs := make([]iter.Seq[int64], len(lines))
	for n, line := range lines {
		seqs[n] = encodeLine(line)
	}
	return internal.Concat(seqs...)
}

// Ascii is a Sender that writes words as characters.
// Words outside of the 7-bit ASCII range are written as a decimal line.
type Ascii struct {
	Output io.Writer
}

var _ Sender = (*Ascii)(nil)

// Send writes a single word.
func (ac *Ascii) Send(value int64) (err error) {
	if value >= 0 && value < 0x80 {
		_, err = ac.Output.Write([]byte{byte(value)})
		return
	}

	_, err = fmt.Fprintf(ac.Output, "%d\n", value)
	return
}
