package main

import "github.com/sabdarana/faucet/internal/cli"

func main() {
	cli.Execute()
}
