package grid

import (
	"fmt"
	"math"

	"github.com/notargets/meanflow/types"
)

/*
Grid is a structured, ghost padded 3D grid stored flat with unit stride along x:

	ijk = i + j*ICells + k*ICells*JCells

Interior cells are [IStart,IEnd) x [JStart,JEnd) x [KStart,KEnd), the horizontal cell size is uniform and the
vertical thickness Dz varies with k.
*/
type Grid struct {
	ITot, JTot, KTot       int // Interior cell counts
	IGC, JGC, KGC          int // Ghost cell widths
	ICells, JCells, KCells int // Ghost inclusive extents
	NCells                 int
	IStart, IEnd           int
	JStart, JEnd           int
	KStart, KEnd           int
	ZSize                  float64
	Stretch                float64
	Z, Dz                  []float64 // Cell centers and thicknesses, dimension KCells
	Zh                     []float64 // Cell faces, dimension KCells+1
}

func NewGrid(ITot, JTot, KTot, IGC, JGC, KGC int, ZSize, Stretch float64) (g *Grid, err error) {
	if ITot < 1 || JTot < 1 || KTot < 1 {
		err = fmt.Errorf("interior cell counts must be positive, have itot, jtot, ktot = %d, %d, %d",
			ITot, JTot, KTot)
		return
	}
	if IGC < 0 || JGC < 0 || KGC < 0 || IGC > ITot || JGC > JTot || KGC > KTot {
		err = fmt.Errorf("ghost cell widths must be in [0,tot], have igc, jgc, kgc = %d, %d, %d",
			IGC, JGC, KGC)
		return
	}
	if !(ZSize > 0) || math.IsInf(ZSize, 0) {
		err = fmt.Errorf("domain height must be positive and finite, have zsize = %v", ZSize)
		return
	}
	if Stretch < 0 || math.IsNaN(Stretch) || math.IsInf(Stretch, 0) {
		err = fmt.Errorf("stretch factor must be zero or positive, have %v", Stretch)
		return
	}
	g = &Grid{
		ITot: ITot, JTot: JTot, KTot: KTot,
		IGC: IGC, JGC: JGC, KGC: KGC,
		ICells:  ITot + 2*IGC,
		JCells:  JTot + 2*JGC,
		KCells:  KTot + 2*KGC,
		IStart:  IGC,
		IEnd:    ITot + IGC,
		JStart:  JGC,
		JEnd:    JTot + JGC,
		KStart:  KGC,
		KEnd:    KTot + KGC,
		ZSize:   ZSize,
		Stretch: Stretch,
	}
	g.NCells = g.ICells * g.JCells * g.KCells
	g.computeVertical()
	return
}

func (g *Grid) computeVertical() {
	var (
		kcells = g.KCells
	)
	g.Zh = make([]float64, kcells+1)
	g.Z = make([]float64, kcells)
	g.Dz = make([]float64, kcells)
	for k := 0; k <= g.KTot; k++ {
		g.Zh[k+g.KStart] = g.faceHeight(k)
	}
	// Ghost faces mirror the interior about the bottom and top walls
	for n := 1; n <= g.KGC; n++ {
		g.Zh[g.KStart-n] = -g.Zh[g.KStart+n]
		g.Zh[g.KEnd+n] = 2*g.ZSize - g.Zh[g.KEnd-n]
	}
	for k := 0; k < kcells; k++ {
		g.Z[k] = 0.5 * (g.Zh[k] + g.Zh[k+1])
		g.Dz[k] = g.Zh[k+1] - g.Zh[k]
	}
}

func (g *Grid) faceHeight(k int) (zh float64) {
	var (
		eta = 2*float64(k)/float64(g.KTot) - 1 // [-1,1]
	)
	switch {
	case k == 0:
		return 0
	case k == g.KTot:
		return g.ZSize
	case g.Stretch == 0:
		return g.ZSize * float64(k) / float64(g.KTot)
	}
	// Hyperbolic tangent clustering toward both walls
	zh = 0.5 * g.ZSize * (1 + math.Tanh(g.Stretch*eta)/math.Tanh(g.Stretch))
	return
}

func (g *Grid) Index(i, j, k int) int {
	return i + j*g.ICells + k*g.ICells*g.JCells
}

func (g *Grid) InteriorBounds() (iStart, iEnd, jStart, jEnd, kStart, kEnd int) {
	return g.IStart, g.IEnd, g.JStart, g.JEnd, g.KStart, g.KEnd
}

func (g *Grid) Totals() (iTot, jTot int, zSize float64) {
	return g.ITot, g.JTot, g.ZSize
}

func (g *Grid) Strides() (jj, kk int) {
	return g.ICells, g.ICells * g.JCells
}

func (g *Grid) CellCount() int {
	return g.NCells
}

func (g *Grid) LayerThickness() []float64 {
	return g.Dz
}

// Boundary fills the ghost cells of data along x, y, then z so that edges and corners are consistent
func (g *Grid) Boundary(data []float64, bcs [3]types.BCFLAG) (err error) {
	if len(data) != g.NCells {
		err = fmt.Errorf("field length %d does not match grid cell count %d", len(data), g.NCells)
		return
	}
	var (
		jj, kk = g.Strides()
	)
	for k := 0; k < g.KCells; k++ {
		for j := 0; j < g.JCells; j++ {
			fillLine(data, j*jj+k*kk, 1, g.IStart, g.IEnd, g.IGC, bcs[0])
		}
	}
	for k := 0; k < g.KCells; k++ {
		for i := 0; i < g.ICells; i++ {
			fillLine(data, i+k*kk, jj, g.JStart, g.JEnd, g.JGC, bcs[1])
		}
	}
	for j := 0; j < g.JCells; j++ {
		for i := 0; i < g.ICells; i++ {
			fillLine(data, i+j*jj, kk, g.KStart, g.KEnd, g.KGC, bcs[2])
		}
	}
	return
}

func fillLine(data []float64, base, stride, start, end, gc int, bc types.BCFLAG) {
	var (
		sign float64
	)
	switch bc {
	case types.BC_Periodic:
		for n := 1; n <= gc; n++ {
			data[base+(start-n)*stride] = data[base+(end-n)*stride]
			data[base+(end-1+n)*stride] = data[base+(start-1+n)*stride]
		}
		return
	case types.BC_Wall: // Zero value on the face
		sign = -1
	case types.BC_Neuman: // Zero gradient on the face
		sign = 1
	default:
		return
	}
	for n := 1; n <= gc; n++ {
		data[base+(start-n)*stride] = sign * data[base+(start+n-1)*stride]
		data[base+(end-1+n)*stride] = sign * data[base+(end-n)*stride]
	}
}
