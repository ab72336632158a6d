// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package protocol

// Input is an event value delivered to the recording state machine.
type Input string

const (
	InputCommandStart  Input = "CommandStart"
	InputCommandStop   Input = "CommandStop"
	InputCommandPause  Input = "CommandPause"
	InputCommandResume Input = "CommandResume"
	InputCommandExtend Input = "CommandExtend"

	// Posted by the recorder poller, never by the console.
	InputRecorderRecording Input = "RecorderRecording"
	InputRecorderIdle      Input = "RecorderIdle"
)

// Inputs lists every defined input.
var Inputs = []Input{
	InputCommandStart,
	InputCommandStop,
	InputCommandPause,
	InputCommandResume,
	InputCommandExtend,
	InputRecorderRecording,
	InputRecorderIdle,
}

func (i Input) String() string { return string(i) }

// Valid reports whether i is part of the enumeration.
func (i Input) Valid() bool {
	for _, in := range Inputs {
		if in == i {
			return true
		}
	}
	return false
}

// DefaultInputTable is the console mapping from Command to state machine Input.
// Commands absent from the table have no state machine input.
var DefaultInputTable = map[Command]Input{
	CommandStart:  InputCommandStart,
	CommandStop:   InputCommandStop,
	CommandPause:  InputCommandPause,
	CommandResume: InputCommandResume,
	CommandExtend: InputCommandExtend,
}
