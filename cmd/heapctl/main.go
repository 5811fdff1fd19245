// Command heapctl is a direct-manipulation front end for the heap-file
// layer: it creates and destroys heap files and drives insert/scan/get/
// delete against them without any query planning or schema catalog — the
// caller supplies a column spec on each invocation that needs one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malzahar-project/heapfiledb/buffer"
	"github.com/malzahar-project/heapfiledb/config"
	"github.com/malzahar-project/heapfiledb/disk"
	"github.com/malzahar-project/heapfiledb/logging"
)

type app struct {
	cfg *config.DBConfig
	dm  *disk.Manager
	bm  *buffer.Manager
}

var (
	cfgPath string
	the     app
)

func main() {
	root := &cobra.Command{
		Use:   "heapctl",
		Short: "Direct-manipulation CLI over the heap-file layer",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDBConfig(cfgPath)
			if err != nil {
				return err
			}
			the = app{cfg: cfg, dm: disk.NewManager(cfg), bm: buffer.NewManager(cfg)}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if the.bm == nil {
				return nil
			}
			return the.bm.FlushAll()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "heapctl.yaml", "path to config file")

	root.AddCommand(
		newCreateCmd(),
		newDestroyCmd(),
		newInsertCmd(),
		newGetCmd(),
		newScanCmd(),
		newDeleteCmd(),
		newReplCmd(),
	)

	if err := root.Execute(); err != nil {
		logging.WarnErr("heapctl.main", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
