// cmd/server is the minimal entry point for container deployments: boot
// and serve, no CLI surface.
package main

import (
	"log"

	"github.com/shashiranjanraj/atelier/internal/server"
)

func main() {
	app, err := server.Boot()
	if err != nil {
		log.Fatal(err)
	}
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
