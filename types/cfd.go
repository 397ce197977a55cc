package types

import (
	"fmt"
	"strings"
)

// BCFLAG selects how the ghost cells along one axis are filled from the interior
type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_Periodic
	BC_Wall
	BC_Neuman
)

var BCNameMap = map[string]BCFLAG{
	"none":     BC_None,
	"periodic": BC_Periodic,
	"cyclic":   BC_Periodic,
	"wall":     BC_Wall,
	"noslip":   BC_Wall,
	"neuman":   BC_Neuman,
	"freeslip": BC_Neuman,
	"slip":     BC_Neuman,
}

func (bc BCFLAG) String() string {
	switch bc {
	case BC_None:
		return "None"
	case BC_Periodic:
		return "Periodic"
	case BC_Wall:
		return "Wall"
	case BC_Neuman:
		return "Neuman"
	}
	return fmt.Sprintf("BCFLAG(%d)", uint8(bc))
}

// NewBCFLAG parses tokens like "Wall", "periodic" or "Wall-top", the part after the first dash is a free label
func NewBCFLAG(token string) (bc BCFLAG, err error) {
	var (
		name = strings.ToLower(strings.TrimSpace(token))
		ok   bool
	)
	if ind := strings.Index(name, "-"); ind != -1 {
		name = name[:ind]
	}
	if bc, ok = BCNameMap[name]; !ok {
		err = fmt.Errorf("unknown boundary condition type: %q", token)
	}
	return
}

// Axis names used as keys for per-axis boundary conditions
var AxisNameMap = map[string]int{
	"x": 0,
	"y": 1,
	"z": 2,
}
