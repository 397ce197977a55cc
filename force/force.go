package force

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/notargets/meanflow/utils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

var ErrInvalidArgument = errors.New("invalid argument")

// DefaultUFlux is the bulk velocity target of the reference channel case
const DefaultUFlux = 0.0282

// Grid is the read only grid description used by the corrector
type Grid interface {
	InteriorBounds() (iStart, iEnd, jStart, jEnd, kStart, kEnd int) // Half open ranges of non ghost cells
	Totals() (iTot, jTot int, zSize float64)
	Strides() (jj, kk int) // Unit stride along i
	CellCount() int        // All cells, ghosts included
	LayerThickness() []float64
}

// Fields exposes the velocity and its tendency, both CellCount long and not overlapping in memory
type Fields interface {
	Velocity() []float64
	Tendency() []float64
}

type Config struct {
	UFlux          float64 // Target domain mean velocity
	ParallelDegree int     // Number of go routines for the reduction and the correction, < 1 means 1
}

func DefaultConfig() Config {
	return Config{
		UFlux:          DefaultUFlux,
		ParallelDegree: 1,
	}
}

/*
Force drives the domain mean streamwise velocity toward UFlux by adding one uniform body force to the tendency.

At each call the Dz weighted interior averages of u and ut are formed and

	fbody = (UFlux - uavg)/dt - utavg

is added to every cell of ut, ghosts included. After the update u += dt*ut the mean velocity equals UFlux.
The reduction completes before any element of ut is written.
*/
type Force struct {
	grid           Grid
	fields         Fields
	UFlux          float64
	ParallelDegree int
	kPart, nPart   *utils.PartitionMap
	partial        [][2]float64 // Per partition sums of u*dz and ut*dz
}

func NewForce(grid Grid, fields Fields, cfg Config) (f *Force, err error) {
	if isNil(grid) {
		err = fmt.Errorf("force: grid is nil: %w", ErrInvalidArgument)
		return
	}
	if isNil(fields) {
		err = fmt.Errorf("force: fields are nil: %w", ErrInvalidArgument)
		return
	}
	if math.IsNaN(cfg.UFlux) || math.IsInf(cfg.UFlux, 0) {
		err = fmt.Errorf("force: target velocity %v is not finite: %w", cfg.UFlux, ErrInvalidArgument)
		return
	}
	if cfg.ParallelDegree < 1 {
		cfg.ParallelDegree = 1
	}
	f = &Force{
		grid:           grid,
		fields:         fields,
		UFlux:          cfg.UFlux,
		ParallelDegree: cfg.ParallelDegree,
	}
	f.partition()
	logrus.WithFields(logrus.Fields{
		"uflux":          f.UFlux,
		"parallelDegree": f.ParallelDegree,
	}).Debug("created mean flow forcing")
	return
}

func (f *Force) partition() {
	var (
		_, _, _, _, kStart, kEnd = f.grid.InteriorBounds()
		nk                       = kEnd - kStart
		ncells                   = f.grid.CellCount()
	)
	if nk < 0 {
		nk = 0
	}
	f.kPart = utils.NewPartitionMap(utils.GetParallelDegree(f.ParallelDegree, nk), nk)
	f.nPart = utils.NewPartitionMap(utils.GetParallelDegree(f.ParallelDegree, ncells), ncells)
	f.partial = make([][2]float64, f.kPart.ParallelDegree)
}

// Exec adds the mean flow correction for a step of size dt to the tendency
func (f *Force) Exec(dt float64) (err error) {
	var (
		fbody float64
	)
	if fbody, err = f.Correction(dt); err != nil {
		return
	}
	ut := f.fields.Tendency()
	f.nPart.Execute(func(bn, nMin, nMax int) {
		floats.AddConst(fbody, ut[nMin:nMax])
	})
	return
}

// Correction computes fbody for a step of size dt without modifying the fields
func (f *Force) Correction(dt float64) (fbody float64, err error) {
	if !(dt > 0) || math.IsInf(dt, 1) {
		err = fmt.Errorf("force: time step must be finite and positive, have %v: %w", dt, ErrInvalidArgument)
		return
	}
	var (
		uavg, utavg float64
	)
	if uavg, utavg, err = f.Averages(); err != nil {
		return
	}
	fbody = (f.UFlux-uavg)/dt - utavg
	return
}

// Averages returns the volume averaged velocity and tendency over the interior cells
func (f *Force) Averages() (uavg, utavg float64, err error) {
	if err = f.check(); err != nil {
		return
	}
	var (
		u, ut                                 = f.fields.Velocity(), f.fields.Tendency()
		dz                                    = f.grid.LayerThickness()
		iStart, iEnd, jStart, jEnd, kStart, _ = f.grid.InteriorBounds()
		jj, kk                                = f.grid.Strides()
		iTot, jTot, zSize                     = f.grid.Totals()
		partial                               = f.partial
	)
	f.kPart.Execute(func(bn, kMin, kMax int) {
		var (
			usum, utsum float64
		)
		for k := kStart + kMin; k < kStart+kMax; k++ {
			for j := jStart; j < jEnd; j++ {
				for i := iStart; i < iEnd; i++ {
					ijk := i + j*jj + k*kk
					usum += u[ijk] * dz[k]
					utsum += ut[ijk] * dz[k]
				}
			}
		}
		partial[bn] = [2]float64{usum, utsum}
	})
	for _, p := range partial {
		uavg += p[0]
		utavg += p[1]
	}
	vol := float64(iTot*jTot) * zSize
	uavg /= vol
	utavg /= vol
	return
}

func (f *Force) check() (err error) {
	var (
		iTot, jTot, zSize   = f.grid.Totals()
		vol                 = float64(iTot*jTot) * zSize
		ncells              = f.grid.CellCount()
		u, ut               = f.fields.Velocity(), f.fields.Tendency()
		_, _, _, _, _, kEnd = f.grid.InteriorBounds()
	)
	switch {
	case vol == 0 || math.IsNaN(vol) || math.IsInf(vol, 0):
		err = fmt.Errorf("force: degenerate domain itot, jtot, zsize = %d, %d, %v: %w",
			iTot, jTot, zSize, ErrInvalidArgument)
	case len(u) != ncells || len(ut) != ncells:
		err = fmt.Errorf("force: field lengths u, ut = %d, %d do not match cell count %d: %w",
			len(u), len(ut), ncells, ErrInvalidArgument)
	case len(f.grid.LayerThickness()) < kEnd:
		err = fmt.Errorf("force: layer thickness has %d levels, need %d: %w",
			len(f.grid.LayerThickness()), kEnd, ErrInvalidArgument)
	case overlaps(u, ut):
		err = fmt.Errorf("force: velocity and tendency share memory: %w", ErrInvalidArgument)
	}
	if err != nil {
		return
	}
	if f.nPart.MaxIndex != ncells {
		f.partition()
	}
	return
}

func overlaps(a, b []float64) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	var (
		size   = unsafe.Sizeof(a[0])
		a0, b0 = uintptr(unsafe.Pointer(&a[0])), uintptr(unsafe.Pointer(&b[0]))
		a1, b1 = a0 + uintptr(len(a))*size, b0 + uintptr(len(b))*size
	)
	return a0 < b1 && b0 < a1
}

func isNil(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return v.IsNil()
	}
	return false
}
