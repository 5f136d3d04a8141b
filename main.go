package main

import "github.com/Yates-Labs/seance/cmd"

func main() {
	cmd.Execute()
}
