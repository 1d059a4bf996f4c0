package main

import "racing-line-optimizer/internal/cmd"

func main() {
	cmd.Execute()
}
