package main

import "attendcore/cmd"

func main() {
	cmd.Execute()
}
