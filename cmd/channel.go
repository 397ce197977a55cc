/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/notargets/meanflow/InputParameters"
	"github.com/notargets/meanflow/model_problems/Channel"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ModelChannel struct {
	ICFile         string
	FinalTime      float64
	ParallelDegree int
	Profile        bool
	Verbose        bool
}

const exampleFile = `
########################################
Title: "Laminar Channel"
UFlux: 0.0282
Viscosity: 1.e-3
ITot: 8
JTot: 8
KTot: 64
ZSize: 2.
Stretch: 1.5 # 0 is uniform spacing
FinalTime: 100.
InitType: Rest # Can be "Uniform" or "Parabolic"
BCs:
  x: periodic
  y: periodic
  z: wall
########################################
`

// ChannelCmd represents the channel command
var ChannelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Channel flow driven to a target bulk velocity by a uniform body force",
	Long:  `Channel flow driven to a target bulk velocity by a uniform body force`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		mc := &ModelChannel{}
		if mc.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		if mc.FinalTime, err = cmd.Flags().GetFloat64("finalTime"); err != nil {
			return
		}
		if mc.Profile, err = cmd.Flags().GetBool("profile"); err != nil {
			return
		}
		mc.ParallelDegree = viper.GetInt("parallelDegree")
		mc.Verbose = viper.GetBool("verbose")
		var ip *InputParameters.InputParametersChannel
		if ip, err = processInput(mc); err != nil {
			return
		}
		return RunChannel(mc, ip)
	},
}

func processInput(mc *ModelChannel) (ip *InputParameters.InputParametersChannel, err error) {
	if len(mc.ICFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		err = fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile) in YAML format")
		return
	}
	var data []byte
	if data, err = os.ReadFile(mc.ICFile); err != nil {
		return
	}
	ip = &InputParameters.InputParametersChannel{}
	if err = ip.Parse(data); err != nil {
		err = fmt.Errorf("reading %s: %w", mc.ICFile, err)
		return
	}
	if mc.FinalTime > 0 {
		ip.FinalTime = mc.FinalTime
	}
	if mc.ParallelDegree > 0 {
		ip.ParallelDegree = mc.ParallelDegree
	}
	return
}

func init() {
	rootCmd.AddCommand(ChannelCmd)
	ChannelCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- UFlux (target bulk velocity)\n\t- Viscosity")
	ChannelCmd.Flags().Float64("finalTime", 0, "FinalTime - overrides the input file when positive")
	ChannelCmd.Flags().Bool("profile", false, "write a CPU profile to the working directory")
}

func RunChannel(mc *ModelChannel, ip *InputParameters.InputParametersChannel) (err error) {
	if mc.Profile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.Quiet).Stop()
	}
	if mc.Verbose {
		ip.Print()
	}
	var c *Channel.Channel
	if c, err = Channel.NewChannel(ip, mc.Verbose); err != nil {
		return
	}
	if err = c.Solve(); err != nil {
		return
	}
	if mc.Verbose {
		for k, val := range c.Profile() {
			logrus.WithFields(logrus.Fields{
				"z": c.Grid.Z[k+c.Grid.KStart],
				"u": val,
			}).Debug("mean profile")
		}
	}
	return
}
