package cmd

import (
	"github.com/notargets/meanflow/InputParameters"
	"github.com/notargets/meanflow/model_problems/Channel"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ConvergenceCmd represents the convergence command
var ConvergenceCmd = &cobra.Command{
	Use:   "convergence",
	Short: "Grid convergence study of the laminar channel against the Poiseuille solution",
	Long: `
Runs the laminar channel described by the input file at a sequence of vertical resolutions
and prints the wall shear and peak velocity errors with the observed order of accuracy,

meanflow convergence -I input.yaml -k 8,16,32,64`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			levels []int
			ip     *InputParameters.InputParametersChannel
			cs     *Channel.ConvergenceStudy
		)
		mc := &ModelChannel{}
		if mc.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		if levels, err = cmd.Flags().GetIntSlice("levels"); err != nil {
			return
		}
		mc.ParallelDegree = viper.GetInt("parallelDegree")
		if ip, err = processInput(mc); err != nil {
			return
		}
		if cs, err = Channel.RunConvergence(ip, levels); err != nil {
			return
		}
		cs.Print()
		return
	},
}

func init() {
	rootCmd.AddCommand(ConvergenceCmd)
	ConvergenceCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for the laminar channel input parameters")
	ConvergenceCmd.Flags().IntSliceP("levels", "k", []int{8, 16, 32, 64}, "vertical cell counts to run")
}
