package main

import "github.com/MeKo-Tech/pocrop/cmd/pocrop/cmd"

func main() {
	cmd.Execute()
}
