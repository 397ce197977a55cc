package Channel

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/notargets/meanflow/InputParameters"
	"github.com/notargets/meanflow/fields"
	"github.com/notargets/meanflow/force"
	"github.com/notargets/meanflow/grid"
	"github.com/notargets/meanflow/types"
	"github.com/notargets/meanflow/utils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

type InitType uint8

const (
	REST InitType = iota
	UNIFORM
	PARABOLIC
)

var (
	InitNames = map[string]InitType{
		"rest":      REST,
		"uniform":   UNIFORM,
		"parabolic": PARABOLIC,
	}
	InitPrintNames = []string{"Fluid at rest", "Uniform bulk velocity", "Laminar parabolic profile"}
)

func (it InitType) Print() (txt string) {
	txt = InitPrintNames[it]
	return
}

func NewInitType(label string) (it InitType, err error) {
	var (
		ok bool
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if it, ok = InitNames[label]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
	}
	return
}

// Williamson low storage third order Runge-Kutta coefficients
var (
	rkA = [3]float64{0, -5. / 9., -153. / 128.}
	rkB = [3]float64{1. / 3., 15. / 16., 8. / 15.}
)

/*
Channel integrates a streamwise velocity between two walls, driven only by the mean flow body force:

	du/dt = nu * d2u/dz2 + fbody

The forcing keeps the bulk velocity at UFlux after every Runge-Kutta stage.
*/
type Channel struct {
	Title         string
	Grid          *grid.Grid
	Fields        *fields.Fields
	Force         *force.Force
	BCs           [3]types.BCFLAG
	Case          InitType
	UFlux         float64
	Viscosity     float64
	CFL, DT       float64
	FinalTime     float64
	MaxIterations int
	PrintSteps    int
	Partitions    *utils.PartitionMap // Interior k levels, for the tendency calculation
	Time          float64
	Steps         int
	dzhi          []float64 // Inverse distance between cell centers k-1 and k
}

func NewChannel(ip *InputParameters.InputParametersChannel, verbose bool) (c *Channel, err error) {
	c = &Channel{
		Title:         ip.Title,
		UFlux:         ip.UFlux,
		Viscosity:     ip.Viscosity,
		CFL:           ip.CFL,
		DT:            ip.DT,
		FinalTime:     ip.FinalTime,
		MaxIterations: ip.MaxIterations,
		PrintSteps:    ip.PrintSteps,
	}
	if c.PrintSteps < 1 {
		c.PrintSteps = 1
	}
	if c.Case, err = NewInitType(ip.InitType); err != nil {
		return
	}
	if c.BCs, err = ip.BoundaryConditions(); err != nil {
		return
	}
	gc := ip.GhostCells
	if c.Grid, err = grid.NewGrid(ip.ITot, ip.JTot, ip.KTot, gc, gc, gc, ip.ZSize, ip.Stretch); err != nil {
		return
	}
	c.Fields = fields.NewFields(c.Grid)
	if err = c.Fields.Check(c.Grid); err != nil {
		return
	}
	NP := utils.GetParallelDegree(ip.ParallelDegree, ip.KTot)
	c.Partitions = utils.NewPartitionMap(NP, ip.KTot)
	if c.Force, err = force.NewForce(c.Grid, c.Fields, force.Config{
		UFlux:          ip.UFlux,
		ParallelDegree: NP,
	}); err != nil {
		return
	}
	c.dzhi = make([]float64, c.Grid.KCells)
	for k := 1; k < c.Grid.KCells; k++ {
		c.dzhi[k] = 1. / (c.Grid.Z[k] - c.Grid.Z[k-1])
	}
	c.InitializeSolution()
	if verbose {
		fmt.Printf("Laminar channel flow with mean flow forcing\n")
		fmt.Printf("Using %d go routines in parallel\n", c.Partitions.ParallelDegree)
		fmt.Printf("Solving %s\n", c.Case.Print())
		fmt.Printf("UFlux = %8.5f, Viscosity = %8.5g, Grid = [%d,%d,%d]\n\n",
			c.UFlux, c.Viscosity, ip.ITot, ip.JTot, ip.KTot)
	}
	return
}

func (c *Channel) InitializeSolution() {
	var (
		g = c.Grid
		u = c.Fields.U.Data
	)
	for k := g.KStart; k < g.KEnd; k++ {
		var val float64
		switch c.Case {
		case UNIFORM:
			val = c.UFlux
		case PARABOLIC:
			eta := 2*g.Z[k]/g.ZSize - 1
			val = 1.5 * c.UFlux * (1 - eta*eta)
		}
		for j := g.JStart; j < g.JEnd; j++ {
			for i := g.IStart; i < g.IEnd; i++ {
				u[g.Index(i, j, k)] = val
			}
		}
	}
	c.Fields.ResetTendency()
}

// TimeStep is the fixed DT when set, otherwise the diffusive limit scaled by CFL
func (c *Channel) TimeStep() (dt float64) {
	if c.DT > 0 {
		return c.DT
	}
	dzMin := floats.Min(c.Grid.Dz[c.Grid.KStart:c.Grid.KEnd])
	dt = c.CFL * dzMin * dzMin / c.Viscosity
	return
}

func (c *Channel) Solve() (err error) {
	var (
		dt       = c.TimeStep()
		finished bool
		elapsed  time.Duration
		start    time.Time
	)
	if !(dt > 0) || math.IsInf(dt, 0) {
		err = fmt.Errorf("invalid time step %v", dt)
		return
	}
	logrus.WithFields(logrus.Fields{
		"title":     c.Title,
		"dt":        dt,
		"finalTime": c.FinalTime,
		"maxSteps":  c.MaxIterations,
	}).Info("starting channel solution")
	for !finished {
		stepDT := dt
		if c.FinalTime > 0 && c.Time+stepDT > c.FinalTime {
			stepDT = c.FinalTime - c.Time
		}
		start = time.Now()
		if err = c.Step(stepDT); err != nil {
			err = fmt.Errorf("step %d at time %v: %w", c.Steps+1, c.Time, err)
			return
		}
		elapsed += time.Since(start)
		c.Time += stepDT
		c.Steps++
		finished = c.CheckIfFinished()
		if finished || c.Steps%c.PrintSteps == 0 || c.Steps == 1 {
			c.PrintUpdate(stepDT)
		}
	}
	c.PrintFinal(elapsed)
	return
}

func (c *Channel) CheckIfFinished() bool {
	if c.FinalTime > 0 && c.Time >= c.FinalTime*(1-1.e-12) {
		return true
	}
	if c.MaxIterations > 0 && c.Steps >= c.MaxIterations {
		return true
	}
	return false
}

// Step advances one full time step, the forcing sees the effective stage step so each stage lands on UFlux
func (c *Channel) Step(dt float64) (err error) {
	var (
		u, ut = c.Fields.U.Data, c.Fields.UT.Data
	)
	for s := 0; s < 3; s++ {
		if err = c.Grid.Boundary(u, c.BCs); err != nil {
			return
		}
		floats.Scale(rkA[s], ut)
		c.DiffusionTendency()
		if err = c.Force.Exec(rkB[s] * dt); err != nil {
			return
		}
		floats.AddScaled(u, rkB[s]*dt, ut)
	}
	return
}

// DiffusionTendency adds nu * d2u/dz2 to the interior tendency, requires filled ghost cells
func (c *Channel) DiffusionTendency() {
	var (
		g      = c.Grid
		u, ut  = c.Fields.U.Data, c.Fields.UT.Data
		jj, kk = g.Strides()
		nu     = c.Viscosity
	)
	c.Partitions.Execute(func(bn, kMin, kMax int) {
		for k := g.KStart + kMin; k < g.KStart+kMax; k++ {
			dzi := 1. / g.Dz[k]
			for j := g.JStart; j < g.JEnd; j++ {
				for i := g.IStart; i < g.IEnd; i++ {
					ijk := i + j*jj + k*kk
					ut[ijk] += nu * dzi * ((u[ijk+kk]-u[ijk])*c.dzhi[k+1] - (u[ijk]-u[ijk-kk])*c.dzhi[k])
				}
			}
		}
	})
}

func (c *Channel) Profile() []float64 {
	return fields.Profile(c.Grid, c.Fields.U.Data)
}

// WallShear is the horizontally averaged nu*du/dz at the bottom wall.
// The one sided u(z1)/z1 is second order only because the wall ghost mirrors u to zero at the face.
func (c *Channel) WallShear() float64 {
	var (
		g    = c.Grid
		prof = c.Profile()
	)
	return c.Viscosity * prof[0] / (g.Z[g.KStart] - g.Zh[g.KStart])
}

func (c *Channel) PrintUpdate(dt float64) {
	logrus.WithFields(logrus.Fields{
		"step":      c.Steps,
		"time":      c.Time,
		"dt":        dt,
		"ubulk":     c.Fields.BulkVelocity(c.Grid),
		"wallShear": c.WallShear(),
	}).Info("channel update")
}

func (c *Channel) PrintFinal(elapsed time.Duration) {
	var (
		rate float64
		nc   = c.Grid.ITot * c.Grid.JTot * c.Grid.KTot
	)
	if c.Steps > 0 && nc > 0 {
		rate = float64(elapsed.Microseconds()) / float64(c.Steps*nc)
	}
	logrus.WithFields(logrus.Fields{
		"steps":           c.Steps,
		"time":            c.Time,
		"elapsed":         elapsed,
		"usPerCellUpdate": rate,
	}).Info("channel solution finished")
}
