package main

import "github.com/zinc-sig/scriptkit/cmd"

func main() {
	cmd.Execute()
}
