package main

import "resumectl/cmd"

func main() {
	cmd.Execute()
}
