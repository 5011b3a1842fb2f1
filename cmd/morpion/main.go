package main

import "github.com/mcoot/morpion/internal/cli"

func main() {
	cli.Execute()
}
