package main

import "github.com/hrishi045/segstore/cmd"

func main() {
	cmd.Execute()
}
