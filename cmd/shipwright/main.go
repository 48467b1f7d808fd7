package main

import "github.com/cameronsjo/shipwright/internal/cmd"

func main() {
	cmd.Execute()
}
