package main

import "github.com/leonmuri/Progol-aleatorio2/internal/cli"

func main() {
	cli.Execute()
}
