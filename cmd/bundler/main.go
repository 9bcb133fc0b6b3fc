package main

import "github.com/deploykit/bundler/cmd/bundler/cmd"

func main() {
	cmd.Execute()
}
