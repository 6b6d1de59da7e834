package emulator

import (
	log "github.com/sirupsen/logrus"

	"github.com/ezrec/intcode/channel"
	"github.com/ezrec/intcode/machine"
)

// Pipeline is a chain of machines running the same program, where the
// output of each stage is the input of the next.
type Pipeline struct {
	Verbose bool               // If set, enables verbose logging.
	Memory  machine.Memory     // Program image for every stage.
	Stages  []*machine.Machine // Stage machines of the last run.

	inbox []channel.Queue
}

// NewPipeline creates a pipeline of stages machines.
func NewPipeline(mem machine.Memory, stages int) (pl *Pipeline) {
	pl = &Pipeline{
		Memory: mem.Clone(),
		Stages: make([]*machine.Machine, stages),
		inbox:  make([]channel.Queue, stages),
	}

	return
}

// stageOutput forwards stage outputs to the next stage inbox.
type stageOutput struct {
	pl       *Pipeline
	stage    int
	feedback bool
	last     *int64
}

func (so *stageOutput) Send(value int64) (err error) {
	next := so.stage + 1
	if next == len(so.pl.Stages) {
		*so.last = value
		if !so.feedback {
			return
		}
		next = 0
	}

	if so.pl.Verbose {
		log.Debugf("pipeline: %d -> %d: %d", so.stage, next, value)
	}

	err = so.pl.inbox[next].Send(value)

	return
}

// Run restarts every stage from the program image, and runs the pipeline
// to completion. Each stage first receives its seed, if any; the first
// stage then receives input. With feedback, the outputs of the last stage
// loop back to the first stage.
//
// Returns the last output of the last stage, or machine.OUTPUT_NONE if
// there was none.
func (pl *Pipeline) Run(seeds []int64, input int64, feedback bool) (output int64, err error) {
	output = machine.OUTPUT_NONE

	if len(pl.Stages) == 0 {
		return
	}

	for n := range pl.Stages {
		pl.Stages[n] = machine.NewFromMemory(pl.Memory, machine.MODE_INTERACTIVE)
		pl.Stages[n].Verbose = pl.Verbose
		pl.inbox[n].Rewind()
		if n < len(seeds) {
			pl.inbox[n].Send(seeds[n])
		}
	}
	pl.inbox[0].Send(input)

	started := make([]bool, len(pl.Stages))
	for {
		running := false
		progress := false
		for n, stage := range pl.Stages {
			if started[n] && stage.Status != machine.STATUS_BLOCKED {
				continue
			}
			started[n] = true
			running = true

			ticks := stage.Ticks
			out := &stageOutput{pl: pl, stage: n, feedback: feedback, last: &output}
			if !stage.Run(&pl.inbox[n], out) {
				err = &ErrRuntime{Node: n, Ip: stage.Ip, Err: stage.Err}
				return
			}

			if stage.Ticks != ticks || stage.Status != machine.STATUS_BLOCKED {
				progress = true
			}
		}

		if !running {
			return
		}

		if !progress {
			err = ErrDeadlock
			return
		}
	}
}
