package main

import "github.com/snapfs/snapfs/cmd"

func main() {
	cmd.Execute()
}
