package main

import "github.com/tabstore/tabstore/cmd"

func main() {
	cmd.Execute()
}
