// Package chip holds the AN30259A programming model: field encoding, the
// intensity policy, the named pattern table, and the atomic commit of the
// shadow register image to the bus.
package chip

import (
	"fmt"

	"github.com/micro-nova/an30259a/internal/hardware"
)

// TransportError reports a failed bus transfer. The shadow image is not
// rolled back; it keeps the attempted values.
type TransportError struct {
	Op  string
	Reg hardware.Register
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("chip: %s reg=0x%02x: %v", e.Op, e.Reg, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
