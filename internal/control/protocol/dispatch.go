// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package protocol

import "fmt"

// ActionKind classifies what the session engine must do with a Command.
type ActionKind int

const (
	ActionRejectUnhandled ActionKind = iota
	ActionPostInput
	ActionReportStatus
)

func (k ActionKind) String() string {
	switch k {
	case ActionPostInput:
		return "post_input"
	case ActionReportStatus:
		return "report_status"
	default:
		return "reject_unhandled"
	}
}

// Action is the routing decision for one Command.
type Action struct {
	Kind  ActionKind
	Input Input // set only for ActionPostInput
}

// Dispatcher resolves Commands against a static Command to Input table.
type Dispatcher struct {
	inputs map[Command]Input
}

// NewDispatcher copies and validates table. Every key must be a defined
// Command and every value a defined Input.
func NewDispatcher(table map[Command]Input) (*Dispatcher, error) {
	inputs := make(map[Command]Input, len(table))
	for c, in := range table {
		if !c.Valid() {
			return nil, fmt.Errorf("input table: unknown command %q", c)
		}
		if !in.Valid() {
			return nil, fmt.Errorf("input table: command %s maps to unknown input %q", c, in)
		}
		inputs[c] = in
	}
	return &Dispatcher{inputs: inputs}, nil
}

// DefaultDispatcher uses DefaultInputTable.
func DefaultDispatcher() *Dispatcher {
	d, err := NewDispatcher(DefaultInputTable)
	if err != nil {
		panic(err)
	}
	return d
}

// Dispatch resolves cmd. First match wins: mapped input, then Status, then reject.
func (d *Dispatcher) Dispatch(cmd Command) Action {
	if in, ok := d.inputs[cmd]; ok {
		return Action{Kind: ActionPostInput, Input: in}
	}
	if cmd == CommandStatus {
		return Action{Kind: ActionReportStatus}
	}
	return Action{Kind: ActionRejectUnhandled}
}

// inputFor returns the mapped input for cmd, if any.
func (d *Dispatcher) inputFor(cmd Command) (Input, bool) {
	in, ok := d.inputs[cmd]
	return in, ok
}
