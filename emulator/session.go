package emulator

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ezrec/intcode/channel"
	"github.com/ezrec/intcode/machine"
)

// Session commands, matched as a prefix of the user line.
const (
	SESSION_QUIT = "quit"
	SESSION_EXIT = "exit"
	SESSION_SAVE = "save"
	SESSION_LOAD = "load"
)

// Session runs an ASCII program interactively. Program output is written
// as text, and each user line becomes an input command.
type Session struct {
	Verbose bool   // If set, enables verbose logging.
	Prompt  string // Written before each user line is read.

	*machine.Machine

	inbox channel.Queue
	saves []*machine.Machine
}

// NewSession creates an interactive session for a copy of mem.
func NewSession(mem machine.Memory) (ss *Session) {
	ss = &Session{
		Machine: machine.NewFromMemory(mem, machine.MODE_INTERACTIVE),
	}

	// The initial state is always available to load.
	ss.saves = []*machine.Machine{ss.Machine.Clone()}

	return
}

// Saves returns the depth of the saved state stack.
func (ss *Session) Saves() int {
	return len(ss.saves)
}

// Save pushes a snapshot of the machine.
func (ss *Session) Save() {
	ss.saves = append(ss.saves, ss.Machine.Clone())
}

// Load restores the most recent snapshot. The initial snapshot is never
// popped. Pending input is dropped.
func (ss *Session) Load() (err error) {
	if len(ss.saves) == 0 {
		err = ErrNoSnapshot
		return
	}

	last := len(ss.saves) - 1
	ss.Machine.Restore(ss.saves[last])
	if last > 0 {
		ss.saves = ss.saves[:last]
	}
	ss.inbox.Rewind()

	return
}

// Send queues a line of text as input.
func (ss *Session) Send(line string) (err error) {
	err = ss.inbox.SendAll(channel.Encode(line))
	return
}

// command handles a user line. Returns quit as true to end the session.
func (ss *Session) command(line string, output io.Writer) (quit bool, err error) {
	switch {
	case strings.HasPrefix(line, SESSION_QUIT), strings.HasPrefix(line, SESSION_EXIT):
		quit = true
	case strings.HasPrefix(line, SESSION_SAVE):
		ss.Save()
		_, err = fmt.Fprintln(output, f("Saved!"))
	case strings.HasPrefix(line, SESSION_LOAD):
		err = ss.Load()
		if err != nil {
			return
		}
		_, err = fmt.Fprintln(output, f("Loaded!"))
	default:
		err = ss.Send(line)
	}

	return
}

// Run the session until the program halts, the user quits, or the user
// input ends.
func (ss *Session) Run(input io.Reader, output io.Writer) (err error) {
	scanner := bufio.NewScanner(input)
	sink := &channel.Ascii{Output: output}

	ss.Machine.Verbose = ss.Verbose

	for {
		if !ss.Machine.Run(&ss.inbox, sink) {
			err = &ErrRuntime{Node: NODE_NONE, Ip: ss.Machine.Ip, Err: ss.Machine.Err}
			return
		}

		if ss.Machine.Status != machine.STATUS_BLOCKED {
			_, err = fmt.Fprintln(output, f("[Program terminated]"))
			return
		}

		if len(ss.Prompt) != 0 {
			_, err = io.WriteString(output, ss.Prompt)
			if err != nil {
				return
			}
		}

		if !scanner.Scan() {
			err = scanner.Err()
			return
		}

		line := scanner.Text()
		if ss.Verbose {
			log.Debugf("session: %q", line)
		}

		var quit bool
		quit, err = ss.command(line, output)
		if quit || err != nil {
			return
		}
	}
}
