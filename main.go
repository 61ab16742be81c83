package main

import "nautilus/cmd"

func main() {
	cmd.Execute()
}
