package main

import (
	"github.com/ina-foss/horloge/cmd"
)

func main() {
	cmd.Execute()
}
