package main

import "infrasense-be/cmd"

func main() {
	cmd.Execute()
}
