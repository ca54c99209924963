package main

import "github.com/sarchlab/fabricsim/cmd/fabricsim/cmd"

func main() {
	cmd.Execute()
}
