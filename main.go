package main

import "github.com/icco/midikeys/cmd"

func main() {
	cmd.Execute()
}
