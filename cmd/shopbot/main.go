package main

import (
	"log"

	"shopbot/internal/buildinfo"
	"shopbot/internal/cmd"
)

func main() {
	log.Printf("shopbot %s (%s, %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cmd.Run("config.yaml"); err != nil {
		log.Fatalf("shopbot exited: %v", err)
	}
}
