package main

import (
	"os"

	"github.com/JiwonJeong414/TechTive-Backend/journalservice"
)

func main() {
	if err := journalservice.Run(); err != nil {
		os.Exit(1)
	}
}
