package main

import "github.com/chip8lab/chippy/cmd"

func main() {
	cmd.Execute()
}
