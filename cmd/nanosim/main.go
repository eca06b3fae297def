package main

import (
	"log"
)

func main() {
	cmd := NewSimCommand()

	err := cmd.Execute()
	if err != nil {
		log.Fatalf("Failed to execute simulation: %v", err)
	}
}
