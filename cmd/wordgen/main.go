package main

import "github.com/MeKo-Tech/wordgen/cmd/wordgen/cmd"

func main() {
	cmd.Execute()
}
