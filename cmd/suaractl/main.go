package main

import "github.com/sujalbistaa/suara/internal/cli"

func main() {
	cli.Execute()
}
