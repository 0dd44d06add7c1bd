package main

import "github.com/forPelevin/shotsplit/internal/cli"

func main() {
	cli.Main()
}
