package fields

import (
	"fmt"

	"github.com/notargets/meanflow/grid"
	"gonum.org/v1/gonum/floats"
)

type Field3D struct {
	Name string
	Data []float64 // Flat, indexed by grid.Index
}

func NewField3D(name string, g *grid.Grid) *Field3D {
	return &Field3D{
		Name: name,
		Data: make([]float64, g.NCells),
	}
}

// Fields holds the streamwise velocity and its tendency, the tendency is an accumulator that terms add into
type Fields struct {
	U, UT *Field3D
}

func NewFields(g *grid.Grid) (f *Fields) {
	f = &Fields{
		U:  NewField3D("u", g),
		UT: NewField3D("ut", g),
	}
	return
}

// Velocity and Tendency return nil for an unallocated field
func (f *Fields) Velocity() []float64 {
	if f.U == nil {
		return nil
	}
	return f.U.Data
}

func (f *Fields) Tendency() []float64 {
	if f.UT == nil {
		return nil
	}
	return f.UT.Data
}

func (f *Fields) ResetTendency() {
	ut := f.Tendency()
	for i := range ut {
		ut[i] = 0
	}
}

// Check verifies both arrays are sized for g
func (f *Fields) Check(g *grid.Grid) (err error) {
	for i, fld := range []*Field3D{f.U, f.UT} {
		if fld == nil {
			err = fmt.Errorf("field %s is not allocated", [2]string{"u", "ut"}[i])
			return
		}
		if len(fld.Data) != g.NCells {
			err = fmt.Errorf("field %s has length %d, grid has %d cells", fld.Name, len(fld.Data), g.NCells)
			return
		}
	}
	return
}

// WeightedMean is the Dz weighted interior average of data, normalized by the interior volume
func WeightedMean(g *grid.Grid, data []float64) (avg float64) {
	var (
		jj, kk = g.Strides()
		ni     = g.IEnd - g.IStart
	)
	if ni <= 0 {
		return
	}
	for k := g.KStart; k < g.KEnd; k++ {
		var sumK float64
		for j := g.JStart; j < g.JEnd; j++ {
			ijk := g.IStart + j*jj + k*kk
			sumK += floats.Sum(data[ijk : ijk+ni])
		}
		avg += sumK * g.Dz[k]
	}
	avg /= float64(g.ITot*g.JTot) * g.ZSize
	return
}

func (f *Fields) BulkVelocity(g *grid.Grid) float64 {
	return WeightedMean(g, f.U.Data)
}

// Profile returns the horizontal average of data at each interior level
func Profile(g *grid.Grid, data []float64) (prof []float64) {
	var (
		jj, kk = g.Strides()
		ni     = g.IEnd - g.IStart
		nh     = float64(g.ITot * g.JTot)
	)
	prof = make([]float64, g.KTot)
	for k := g.KStart; k < g.KEnd; k++ {
		for j := g.JStart; j < g.JEnd; j++ {
			ijk := g.IStart + j*jj + k*kk
			prof[k-g.KStart] += floats.Sum(data[ijk : ijk+ni])
		}
		prof[k-g.KStart] /= nh
	}
	return
}
