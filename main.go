package main

import "github.com/iksnae/chat-dashboard/cmd"

func main() {
	cmd.Execute()
}
