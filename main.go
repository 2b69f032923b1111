package main

import "github.com/ftl/flexsdr/cmd"

func main() {
	cmd.Execute()
}
