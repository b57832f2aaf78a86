// Command recipebox is a personal recipe catalog for the terminal.
package main

import "github.com/mesh-intelligence/recipebox/internal/cli"

func main() {
	cli.Execute()
}
