package main

import "github.com/notargets/meanflow/cmd"

func main() {
	cmd.Execute()
}
