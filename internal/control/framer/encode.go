// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package framer

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// EncodeLine renders text plus terminator as ISO-8859-1, the inverse of
// Feed. Runes outside Latin-1 are replaced.
func EncodeLine(text, terminator string) []byte {
	enc := encoding.ReplaceUnsupported(charmap.ISO8859_1.NewEncoder())
	out, err := enc.Bytes([]byte(text + terminator))
	if err != nil {
		return []byte(text + terminator)
	}
	return out
}
