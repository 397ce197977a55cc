package Channel

import (
	"fmt"
	"math"

	"github.com/notargets/meanflow/InputParameters"
	"gonum.org/v1/gonum/floats"
)

// ConvergenceStudy collects laminar channel errors against the Poiseuille solution over a sequence of grids
type ConvergenceStudy struct {
	Title      string
	NumPTS     []int
	ShearError []float64 // Relative wall shear error, exact is 6*nu*UFlux/ZSize
	PeakError  []float64 // Relative error of the peak velocity, exact is 1.5*UFlux
	ExactShear float64
	ExactPeak  float64
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{
		Title: title,
	}
}

func (cs *ConvergenceStudy) Add(numPTS int, shearErr, peakErr float64) {
	cs.NumPTS = append(cs.NumPTS, numPTS)
	cs.ShearError = append(cs.ShearError, shearErr)
	cs.PeakError = append(cs.PeakError, peakErr)
}

// Orders returns the observed order of accuracy between successive grids, one shorter than NumPTS
func (cs *ConvergenceStudy) Orders(errs []float64) (orders []float64) {
	for i := 1; i < len(cs.NumPTS); i++ {
		ratio := float64(cs.NumPTS[i]) / float64(cs.NumPTS[i-1])
		orders = append(orders, math.Log(errs[i-1]/errs[i])/math.Log(ratio))
	}
	return
}

func (cs *ConvergenceStudy) Print() {
	fmt.Printf("Title = %s, exact wall shear = %8.5g, exact peak velocity = %8.5g\n",
		cs.Title, cs.ExactShear, cs.ExactPeak)
	sOrd, pOrd := cs.Orders(cs.ShearError), cs.Orders(cs.PeakError)
	for i := range cs.NumPTS {
		if i == 0 {
			fmt.Printf("%d, %v, %v\n", cs.NumPTS[i], cs.ShearError[i], cs.PeakError[i])
			continue
		}
		fmt.Printf("%d, %v, %v, order = %5.2f, %5.2f\n",
			cs.NumPTS[i], cs.ShearError[i], cs.PeakError[i], sOrd[i-1], pOrd[i-1])
	}
}

// RunConvergence solves the laminar channel from ip at each vertical resolution, ip is not modified
func RunConvergence(ip *InputParameters.InputParametersChannel, levels []int) (cs *ConvergenceStudy, err error) {
	if len(levels) < 2 {
		err = fmt.Errorf("need at least two levels for a convergence study, have %v", levels)
		return
	}
	if ip.Stretch != 0 {
		err = fmt.Errorf("convergence study requires uniform vertical spacing, have stretch %v", ip.Stretch)
		return
	}
	cs = NewConvergenceStudy(ip.Title)
	cs.ExactShear = 6 * ip.Viscosity * ip.UFlux / ip.ZSize
	cs.ExactPeak = 1.5 * ip.UFlux
	for _, ktot := range levels {
		var (
			c     *Channel
			ipLev = *ip
		)
		ipLev.KTot = ktot
		if c, err = NewChannel(&ipLev, false); err != nil {
			return
		}
		if err = c.Solve(); err != nil {
			return
		}
		cs.Add(ktot,
			math.Abs(c.WallShear()-cs.ExactShear)/math.Abs(cs.ExactShear),
			math.Abs(floats.Max(c.Profile())-cs.ExactPeak)/math.Abs(cs.ExactPeak))
	}
	return
}
