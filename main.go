package main

import (
	"dbf-pump/cmd"
)

func main() {
	cmd.Execute()
}
