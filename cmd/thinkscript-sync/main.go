package main

import "github.com/oshokin/thinkscript-sync/cmd/thinkscript-sync/cmd"

func main() {
	cmd.Execute()
}
