// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package protocol defines the recorder control console vocabulary:
// the Command verbs accepted on the wire, the state machine Inputs a
// subset of them map to, and the response lines the console writes back.
//
// Wire format (TCP, text, one command per line):
//
//	Request:   <command>\n        (case-insensitive, CR, LF or CRLF)
//	Response:  zero or more lines terminated by \n
//
// Example session:
//
//	CLI: status
//	SRV: Recorder-Status: Idle
//	CLI: start
//	CLI: bogus
//	SRV: TCP-Error: Command not found: bogus
package protocol
