package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	_ "github.com/tliron/commonlog/simple"
)

var version = "0.1.0"

func main() {
	var opts options
	rootCmd := &cobra.Command{
		Use:          "annox",
		Short:        "Extract annotations from Java sources",
		Version:      version,
		SilenceUsage: true,
	}
	opts.register(rootCmd)

	rootCmd.AddCommand(newScanCmd(&opts))
	rootCmd.AddCommand(newParseCmd(&opts))
	rootCmd.AddCommand(newTypesCmd(&opts))
	rootCmd.AddCommand(newLSPCmd(&opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
