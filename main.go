package main

import "github.com/brogergvhs/tokihunter/cmd"

func main() {
	cmd.Execute()
}
