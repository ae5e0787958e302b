package main

import "github.com/anihub/anihub-web/internal/cli"

func main() {
	cli.Execute()
}
