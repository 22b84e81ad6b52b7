package main

import "github.com/andrzejf1994/ha-ios-nextalarm/cmd/nextalarm-inspect/cmd"

func main() {
	cmd.Execute()
}
