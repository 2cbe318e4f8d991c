package main

import "github.com/sharedbox/sharedbox/cmd"

func main() {
	cmd.Execute()
}
