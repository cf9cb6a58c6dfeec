package main

import (
	"github.com/osnit-shield/osnit/cmd"
)

func main() {
	cmd.Execute()
}
