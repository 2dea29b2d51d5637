package main

import "netqoe/cmd/qoectl/commands"

func main() {
	commands.Execute()
}
