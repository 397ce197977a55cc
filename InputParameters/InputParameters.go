package InputParameters

import (
	"fmt"
	"math"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/notargets/meanflow/force"
	"github.com/notargets/meanflow/types"
)

// Parameters obtained from the YAML input file
type InputParametersChannel struct {
	Title          string            `yaml:"Title"`
	UFlux          float64           `yaml:"UFlux"`     // Target bulk velocity
	Viscosity      float64           `yaml:"Viscosity"` // Kinematic viscosity
	ITot           int               `yaml:"ITot"`
	JTot           int               `yaml:"JTot"`
	KTot           int               `yaml:"KTot"`
	GhostCells     int               `yaml:"GhostCells"`
	ZSize          float64           `yaml:"ZSize"`
	Stretch        float64           `yaml:"Stretch"` // 0 is uniform vertical spacing
	CFL            float64           `yaml:"CFL"`     // Diffusive stability number, used when DT is zero
	DT             float64           `yaml:"DT"`
	FinalTime      float64           `yaml:"FinalTime"`
	MaxIterations  int               `yaml:"MaxIterations"`
	PrintSteps     int               `yaml:"PrintSteps"`
	ParallelDegree int               `yaml:"ParallelDegree"`
	InitType       string            `yaml:"InitType"`
	BCs            map[string]string `yaml:"BCs"` // Key is axis name (x, y, z), value is BC name
	// UFlux is optional in the file, a present zero is a valid target
	UFluxSet bool `json:"-"`
}

func (ip *InputParametersChannel) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	var raw map[string]interface{}
	if err = yaml.Unmarshal(data, &raw); err != nil {
		return
	}
	_, ip.UFluxSet = raw["UFlux"]
	ip.Defaults()
	return ip.Validate()
}

func (ip *InputParametersChannel) Defaults() {
	if !ip.UFluxSet && ip.UFlux == 0 {
		ip.UFlux = force.DefaultUFlux
	}
	if ip.GhostCells == 0 {
		ip.GhostCells = 1
	}
	if ip.CFL == 0 {
		ip.CFL = 0.2
	}
	if ip.PrintSteps == 0 {
		ip.PrintSteps = 100
	}
	if len(ip.InitType) == 0 {
		ip.InitType = "Rest"
	}
	if ip.BCs == nil {
		ip.BCs = make(map[string]string)
	}
	// YAML 1.1 reads a bare y key as the boolean true
	if bc, ok := ip.BCs["true"]; ok {
		delete(ip.BCs, "true")
		if _, present := ip.BCs["y"]; !present {
			ip.BCs["y"] = bc
		}
	}
	for axis, bc := range map[string]string{"x": "periodic", "y": "periodic", "z": "wall"} {
		if _, ok := ip.BCs[axis]; !ok {
			ip.BCs[axis] = bc
		}
	}
}

func (ip *InputParametersChannel) Validate() (err error) {
	switch {
	case ip.ITot < 1 || ip.JTot < 1 || ip.KTot < 1:
		err = fmt.Errorf("grid dimensions must be positive, have ITot, JTot, KTot = %d, %d, %d",
			ip.ITot, ip.JTot, ip.KTot)
	case !(ip.ZSize > 0):
		err = fmt.Errorf("ZSize must be positive, have %v", ip.ZSize)
	case !(ip.Viscosity > 0):
		err = fmt.Errorf("viscosity must be positive, have %v", ip.Viscosity)
	case ip.DT < 0 || math.IsNaN(ip.DT):
		err = fmt.Errorf("DT must be zero (automatic) or positive, have %v", ip.DT)
	case ip.FinalTime <= 0 && ip.MaxIterations <= 0:
		err = fmt.Errorf("one of FinalTime or MaxIterations must be positive")
	}
	if err != nil {
		return
	}
	_, err = ip.BoundaryConditions()
	return
}

// BoundaryConditions converts the BCs map into per axis flags ordered x, y, z
func (ip *InputParametersChannel) BoundaryConditions() (bcs [3]types.BCFLAG, err error) {
	for axis, name := range ip.BCs {
		var (
			ind int
			ok  bool
		)
		if ind, ok = types.AxisNameMap[axis]; !ok {
			err = fmt.Errorf("unknown axis %q in BCs, use x, y or z", axis)
			return
		}
		if bcs[ind], err = types.NewBCFLAG(name); err != nil {
			return
		}
	}
	return
}

func (ip *InputParametersChannel) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= UFlux\n", ip.UFlux)
	fmt.Printf("%8.5g\t\t= Viscosity\n", ip.Viscosity)
	fmt.Printf("[%d,%d,%d]\t\t= Grid ITot, JTot, KTot\n", ip.ITot, ip.JTot, ip.KTot)
	fmt.Printf("%8.5f\t\t= ZSize\n", ip.ZSize)
	fmt.Printf("%8.5f\t\t= Stretch\n", ip.Stretch)
	fmt.Printf("%8.5f\t\t= CFL\n", ip.CFL)
	fmt.Printf("%8.5f\t\t= DT\n", ip.DT)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%d]\t\t\t\t= Max Iterations\n", ip.MaxIterations)
	fmt.Printf("[%s]\t\t\t= InitType\n", ip.InitType)
	keys := make([]string, len(ip.BCs))
	i := 0
	for k := range ip.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
}
