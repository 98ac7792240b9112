package main

import "github.com/BenAppdev/robot-project/cmd"

func main() {
	cmd.Execute()
}
