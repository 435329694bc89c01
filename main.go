package main

import (
	"github.com/cliphubagency-collab/dental-ai-receptionist1/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
