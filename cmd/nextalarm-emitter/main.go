package main

import "github.com/andrzejf1994/ha-ios-nextalarm/cmd/nextalarm-emitter/cmd"

func main() {
	cmd.Execute()
}
