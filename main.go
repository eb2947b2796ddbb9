package main

import "github.com/lepinkainen/maldb/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
