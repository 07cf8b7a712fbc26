package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/metrolabs/metro/app/controllers"
	"github.com/metrolabs/metro/app/routes"
	"github.com/metrolabs/metro/internal/server"
	"github.com/metrolabs/metro/pkg/router"
)

// metro run — start the HTTP server.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the API server (alias: serve)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// metro serve — alias kept for muscle memory.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

// metro route:list — print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := router.New()
		// Zero-value controllers are enough to register the table;
		// nothing gets invoked.
		routes.RegisterAPI(r, routes.Deps{
			Auth:     &controllers.AuthController{},
			Users:    &controllers.UserController{},
			Products: &controllers.ProductController{},
			Orders:   &controllers.OrderController{},
			Payments: &controllers.PaymentController{},
		})

		infos := r.Routes()
		if len(infos) == 0 {
			fmt.Println("No named routes registered.")
			return nil
		}

		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
