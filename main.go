package main

import (
	"github.com/databacker/dir-archiver/cmd"
)

func main() {
	cmd.Execute()
}
