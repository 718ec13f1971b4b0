package main

import "github.com/AJITHPRASAD95/door1/cmd"

func main() {
	cmd.Execute()
}
