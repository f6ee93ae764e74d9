package main

import "github.com/robertcoopercode/better-photos/cmd"

func main() {
	cmd.Execute()
}
