package channel

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Tape reads and writes words as comma-delimited decimal text.
//
// Input tolerates whitespace and newlines around the commas. The first
// token that is not an integer ends the input and is kept in Err.
// Output is written without a trailing comma, so a program that prints
// its own text produces it verbatim.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Err error // First input error, other than io.EOF.

	reader *bufio.Reader
	wrote  bool
}

var _ Receiver = (*Tape)(nil)
var _ Sender = (*Tape)(nil)

// Rewind restarts the output separator state. A reader cannot be rewound.
func (tc *Tape) Rewind() {
	tc.wrote = false
}

func isDelimiter(c byte) bool {
	switch c {
	case ',', ' ', '\t', '\r', '\n':
		return true
	}
	return false
}

// token returns the next delimited word of text.
func (tc *Tape) token() (word string, err error) {
	if tc.reader == nil {
		tc.reader = bufio.NewReader(tc.Input)
	}

	var text strings.Builder
	for {
		var c byte
		c, err = tc.reader.ReadByte()
		if err != nil {
			if err == io.EOF && text.Len() > 0 {
				err = nil
			}
			break
		}
		if isDelimiter(c) {
			if text.Len() > 0 {
				break
			}
			continue
		}
		text.WriteByte(c)
	}

	word = text.String()
	return
}

// Receive parses the next word from Input.
func (tc *Tape) Receive() (value int64, ok bool) {
	if tc.Input == nil || tc.Err != nil {
		return
	}

	word, err := tc.token()
	if err != nil {
		if err != io.EOF {
			tc.Err = err
		}
		return
	}

	value, err = strconv.ParseInt(word, 10, 64)
	if err != nil {
		tc.Err = ErrParseNumber(word)
		return
	}

	ok = true
	return
}

// Send writes value to Output, comma separated from the previous word.
func (tc *Tape) Send(value int64) (err error) {
	text := strconv.FormatInt(value, 10)
	if tc.wrote {
		text = "," + text
	}

	_, err = io.WriteString(tc.Output, text)
	if err != nil {
		return
	}

	tc.wrote = true

	return
}
