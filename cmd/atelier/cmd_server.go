package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/atelier/internal/server"
)

// atelier serve — boot everything and start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server, queue workers, and scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Boot()
		if err != nil {
			return err
		}
		return app.Run()
	},
}

// atelier route:list — print the registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := server.Boot()
		if err != nil {
			return err
		}
		defer app.Close()

		routes := app.Router.Routes()
		if len(routes) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		names := make([]string, 0, len(routes))
		for name := range routes {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH")
		fmt.Fprintln(w, "----\t----")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%s\n", name, routes[name])
		}
		return w.Flush()
	},
}
