package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/iksnae/chat-dashboard/internal"
	"github.com/iksnae/chat-dashboard/internal/demo"
	"github.com/spf13/cobra"
)

var (
	demoCount int
	demoSeed  int64
	demoDays  int
	demoOut   string
)

// demoOrdersCmd represents the demo-orders command
var demoOrdersCmd = &cobra.Command{
	Use:   "demo-orders",
	Short: "Generate a synthetic order payload for demonstrations",
	Long: `Write a payload of random comida orders. The payload is tagged as demo data:
summary only accepts it with --allow-demo and export refuses it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if demoCount <= 0 {
			return fmt.Errorf("--count must be positive")
		}

		var w io.Writer = cmd.OutOrStdout()
		if demoOut != "-" {
			f, err := os.Create(demoOut)
			if err != nil {
				return &internal.StorageError{Path: demoOut, Op: "write", Err: err}
			}
			defer f.Close()
			w = f
		}

		g := demo.NewGenerator(demoSeed, time.Now(), demoDays)
		if err := g.Write(w, demoCount); err != nil {
			return err
		}

		if demoOut != "-" {
			internal.PrintWarning(fmt.Sprintf("Wrote %d demo orders to %s (synthetic data)", demoCount, demoOut))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(demoOrdersCmd)
	demoOrdersCmd.Flags().IntVarP(&demoCount, "count", "n", 50, "Number of orders")
	demoOrdersCmd.Flags().Int64Var(&demoSeed, "seed", time.Now().UnixNano(), "Random seed")
	demoOrdersCmd.Flags().IntVar(&demoDays, "days", 7, "Spread orders over this many days")
	demoOrdersCmd.Flags().StringVarP(&demoOut, "out", "o", "-", "Output file, or - for stdout")
}
