package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/atelier/database/seeders"
	"github.com/shashiranjanraj/atelier/internal/server"
	"github.com/shashiranjanraj/atelier/pkg/database"
)

// atelier seed — run all registered seeders.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Boot()
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Println("Seeding database:")
		return seeders.RunAll(cmd.Context(), database.DB())
	},
}
