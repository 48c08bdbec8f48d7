package main

import "github.com/rbeaumont/shiftclock/cmd"

func main() {
	cmd.Execute()
}
