package main

import "ocean-manifest/internal/cli"

func main() {
	cli.Execute()
}
