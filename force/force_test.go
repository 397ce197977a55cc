package force

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/notargets/meanflow/fields"
	"github.com/notargets/meanflow/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hand built grid: 4 x 2 x 2 cells with the interior at i = 1,2, j = 1, k = 0,1
type testGrid struct {
	bounds [6]int
	iTot   int
	jTot   int
	zSize  float64
	jj, kk int
	ncells int
	dz     []float64
}

func newTestGrid() *testGrid {
	return &testGrid{
		bounds: [6]int{1, 3, 1, 2, 0, 2},
		iTot:   2, jTot: 1, zSize: 2,
		jj: 4, kk: 8,
		ncells: 16,
		dz:     []float64{1, 1},
	}
}

func (g *testGrid) InteriorBounds() (int, int, int, int, int, int) {
	b := g.bounds
	return b[0], b[1], b[2], b[3], b[4], b[5]
}
func (g *testGrid) Totals() (int, int, float64) { return g.iTot, g.jTot, g.zSize }
func (g *testGrid) Strides() (int, int)         { return g.jj, g.kk }
func (g *testGrid) CellCount() int              { return g.ncells }
func (g *testGrid) LayerThickness() []float64   { return g.dz }

type testFields struct {
	u, ut []float64
}

func (f *testFields) Velocity() []float64 { return f.u }
func (f *testFields) Tendency() []float64 { return f.ut }

func newTestFields(n int) *testFields {
	return &testFields{u: make([]float64, n), ut: make([]float64, n)}
}

var (
	_ Grid   = (*grid.Grid)(nil)
	_ Fields = (*fields.Fields)(nil)
)

func TestNewForce(t *testing.T) {
	var (
		g   = newTestGrid()
		f   = newTestFields(g.ncells)
		err error
	)
	{
		_, err = NewForce(nil, f, DefaultConfig())
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		_, err = NewForce(g, nil, DefaultConfig())
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		var gp *grid.Grid
		_, err = NewForce(gp, f, DefaultConfig())
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		var fp *fields.Fields
		_, err = NewForce(g, fp, DefaultConfig())
		assert.True(t, errors.Is(err, ErrInvalidArgument))
		_, err = NewForce(g, f, Config{UFlux: math.NaN()})
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	}
	{
		fc, err := NewForce(g, f, Config{UFlux: 1.5})
		require.NoError(t, err)
		assert.Equal(t, 1.5, fc.UFlux)
		assert.Equal(t, 1, fc.ParallelDegree)
		assert.Equal(t, DefaultUFlux, DefaultConfig().UFlux)
	}
}

func TestForce_EndToEnd(t *testing.T) {
	var (
		g = newTestGrid()
		f = newTestFields(g.ncells)
	)
	fc, err := NewForce(g, f, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, fc.Exec(1.))
	for n := range f.ut {
		assert.Equal(t, 0.0282, f.ut[n])
	}
	// Ghost cells receive the same correction as the interior
	assert.Equal(t, f.ut[1+1*4+0*8], f.ut[0])
	assert.Equal(t, f.ut[1+1*4+0*8], f.ut[15])
	for n := range f.u {
		assert.Equal(t, 0., f.u[n])
	}
}

func TestForce_Uniformity(t *testing.T) {
	g, err := grid.NewGrid(8, 6, 10, 2, 2, 1, 2., 1.2)
	require.NoError(t, err)
	var (
		f      = fields.NewFields(g)
		r      = rand.New(rand.NewSource(1))
		before = make([]float64, g.NCells)
	)
	for n := range f.U.Data {
		f.U.Data[n] = r.Float64()
		f.UT.Data[n] = r.NormFloat64()
	}
	copy(before, f.UT.Data)
	fc, err := NewForce(g, f, DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, fc.Exec(0.01))
	delta := f.UT.Data[0] - before[0]
	for n := range f.UT.Data {
		assert.InDelta(t, delta, f.UT.Data[n]-before[n], 1.e-12)
	}
}

func TestForce_UniformFields(t *testing.T) {
	var (
		v0, t0, dt = 0.7, -0.3, 0.25
		target     = 0.0282
	)
	g, err := grid.NewGrid(5, 3, 4, 1, 1, 1, 4., 0) // Unit layer thickness
	require.NoError(t, err)
	f := fields.NewFields(g)
	for n := range f.U.Data {
		f.U.Data[n] = v0
		f.UT.Data[n] = t0
	}
	fc, err := NewForce(g, f, Config{UFlux: target})
	require.NoError(t, err)
	uavg, utavg, err := fc.Averages()
	require.NoError(t, err)
	assert.InEpsilon(t, v0, uavg, 1.e-12)
	assert.InEpsilon(t, t0, utavg, 1.e-12)
	fbody, err := fc.Correction(dt)
	require.NoError(t, err)
	assert.InEpsilon(t, (target-v0)/dt-t0, fbody, 1.e-12)
	require.NoError(t, fc.Exec(dt))
	for n := range f.UT.Data {
		assert.InEpsilon(t, t0+fbody, f.UT.Data[n], 1.e-12)
	}
	// Advancing with the corrected tendency lands the mean on the target
	for n := range f.U.Data {
		f.U.Data[n] += dt * f.UT.Data[n]
	}
	assert.InDelta(t, target, f.BulkVelocity(g), 1.e-12)
}

func TestForce_AtTarget(t *testing.T) {
	g, err := grid.NewGrid(4, 4, 4, 1, 1, 1, 4., 0)
	require.NoError(t, err)
	f := fields.NewFields(g)
	for n := range f.U.Data {
		f.U.Data[n] = 0.5
	}
	fc, err := NewForce(g, f, Config{UFlux: 0.5})
	require.NoError(t, err)
	fbody, err := fc.Correction(0.1)
	require.NoError(t, err)
	assert.Equal(t, 0., fbody)
	require.NoError(t, fc.Exec(0.1))
	for n := range f.UT.Data {
		assert.Equal(t, 0., f.UT.Data[n])
	}
}

func TestForce_LayerWeighting(t *testing.T) {
	g, err := grid.NewGrid(1, 1, 2, 0, 0, 0, 4., 0)
	require.NoError(t, err)
	g.Dz[0], g.Dz[1] = 1., 3.
	f := fields.NewFields(g)
	f.U.Data[g.Index(0, 0, 0)] = 2.
	f.U.Data[g.Index(0, 0, 1)] = 6.
	fc, err := NewForce(g, f, Config{UFlux: 0})
	require.NoError(t, err)
	uavg, utavg, err := fc.Averages()
	require.NoError(t, err)
	assert.InDelta(t, (2.*1.+6.*3.)/(1.*1.*4.), uavg, 1.e-14)
	assert.NotEqual(t, (2.+6.)/2., uavg)
	assert.Equal(t, 0., utavg)
	fbody, err := fc.Correction(1.)
	require.NoError(t, err)
	assert.InDelta(t, -5., fbody, 1.e-14)
}

func TestForce_InvalidTimeStep(t *testing.T) {
	var (
		g = newTestGrid()
		f = newTestFields(g.ncells)
	)
	for n := range f.ut {
		f.ut[n] = float64(n)
	}
	before := append([]float64(nil), f.ut...)
	fc, err := NewForce(g, f, DefaultConfig())
	require.NoError(t, err)
	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		err = fc.Exec(dt)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "dt = %v", dt)
		assert.Equal(t, before, f.ut)
	}
}

func TestForce_InvalidCollaborators(t *testing.T) {
	{ // Degenerate domain
		g := newTestGrid()
		g.zSize = 0
		f := newTestFields(g.ncells)
		fc, err := NewForce(g, f, DefaultConfig())
		require.NoError(t, err)
		assert.True(t, errors.Is(fc.Exec(1.), ErrInvalidArgument))
		for n := range f.ut {
			assert.Equal(t, 0., f.ut[n])
		}
	}
	{ // Field length mismatch
		g := newTestGrid()
		f := newTestFields(g.ncells)
		f.ut = f.ut[:10]
		fc, err := NewForce(g, f, DefaultConfig())
		require.NoError(t, err)
		assert.True(t, errors.Is(fc.Exec(1.), ErrInvalidArgument))
	}
	{ // Unallocated velocity or tendency in a concrete field container
		g := newTestGrid()
		for _, f := range []*fields.Fields{
			{},
			{U: &fields.Field3D{Name: "u", Data: make([]float64, g.ncells)}},
			{UT: &fields.Field3D{Name: "ut", Data: make([]float64, g.ncells)}},
		} {
			fc, err := NewForce(g, f, DefaultConfig())
			require.NoError(t, err)
			assert.NotPanics(t, func() {
				assert.True(t, errors.Is(fc.Exec(1.), ErrInvalidArgument))
			})
			if f.UT != nil {
				for n := range f.UT.Data {
					assert.Equal(t, 0., f.UT.Data[n])
				}
			}
		}
	}
	{ // Aliased velocity and tendency
		g := newTestGrid()
		buf := make([]float64, g.ncells)
		f := &testFields{u: buf, ut: buf}
		fc, err := NewForce(g, f, DefaultConfig())
		require.NoError(t, err)
		assert.True(t, errors.Is(fc.Exec(1.), ErrInvalidArgument))
	}
	{ // Too few layer thicknesses
		g := newTestGrid()
		g.dz = g.dz[:1]
		fc, err := NewForce(g, newTestFields(g.ncells), DefaultConfig())
		require.NoError(t, err)
		assert.True(t, errors.Is(fc.Exec(1.), ErrInvalidArgument))
	}
}

func TestForce_EmptyInterior(t *testing.T) {
	g := newTestGrid()
	g.bounds = [6]int{2, 2, 1, 2, 0, 2}
	f := newTestFields(g.ncells)
	for n := range f.u {
		f.u[n] = 10
	}
	fc, err := NewForce(g, f, Config{UFlux: 1})
	require.NoError(t, err)
	uavg, utavg, err := fc.Averages()
	require.NoError(t, err)
	assert.Equal(t, 0., uavg)
	assert.Equal(t, 0., utavg)
	require.NoError(t, fc.Exec(0.5))
	assert.Equal(t, 2., f.ut[0])
}

func TestForce_Parallel(t *testing.T) {
	g, err := grid.NewGrid(16, 8, 32, 1, 1, 1, 2., 2.)
	require.NoError(t, err)
	var (
		r      = rand.New(rand.NewSource(7))
		serial = fields.NewFields(g)
		par    = fields.NewFields(g)
	)
	for n := range serial.U.Data {
		serial.U.Data[n] = r.Float64()
		serial.UT.Data[n] = r.NormFloat64()
	}
	copy(par.U.Data, serial.U.Data)
	copy(par.UT.Data, serial.UT.Data)
	fs, err := NewForce(g, serial, DefaultConfig())
	require.NoError(t, err)
	fp, err := NewForce(g, par, Config{UFlux: DefaultUFlux, ParallelDegree: 6})
	require.NoError(t, err)
	assert.Equal(t, 6, fp.kPart.ParallelDegree)
	f1, err := fs.Correction(0.02)
	require.NoError(t, err)
	f2, err := fp.Correction(0.02)
	require.NoError(t, err)
	assert.InEpsilon(t, f1, f2, 1.e-12)
	require.NoError(t, fs.Exec(0.02))
	require.NoError(t, fp.Exec(0.02))
	for n := range serial.UT.Data {
		assert.InDelta(t, serial.UT.Data[n], par.UT.Data[n], 1.e-10)
	}
}
