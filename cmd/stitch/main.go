package main

import "github.com/stitch-ai/stitch-go-sdk/internal/cli"

func main() {
	cli.Execute()
}
