package main

import (
	"os"

	"github.com/JiwonJeong414/TechTive-Backend/pipelineworker"
)

func main() {
	if err := pipelineworker.Run(); err != nil {
		os.Exit(1)
	}
}
