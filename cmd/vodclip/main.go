package main

import "github.com/forPelevin/vodclip/internal/cli"

func main() {
	cli.Main()
}
