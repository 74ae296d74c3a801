package main

import "github.com/funvibe/argbind/pkg/cli"

func main() {
	cli.Main()
}
