package main

import "taskboard.dev/taskboard/cmd"

func main() {
	cmd.Execute()
}
