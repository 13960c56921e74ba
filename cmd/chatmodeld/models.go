package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"chatmodeld/internal/config"
	"chatmodeld/internal/registry"
	"chatmodeld/pkg/types"
)

func buildModelsCmd() *cobra.Command {
	var dir string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Scan a models directory and print what would be served",
		Example: "  chatmodeld models --dir ~/models/llm\n" +
			"  chatmodeld models --config chatmodeld.yaml --json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg config.Config
			if flagConfig != "" {
				var err error
				cfg, err = config.Load(flagConfig)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}
			if dir == "" {
				dir = cfg.ModelsDir
			}
			if dir == "" {
				dir = envOr("CHATMODELD_MODELS_DIR", "~/models/llm")
			}
			discovered, err := registry.LoadDir(dir)
			if err != nil {
				return fmt.Errorf("scan %s: %w", dir, err)
			}
			explicit := make([]types.Model, 0, len(cfg.Models))
			for _, mc := range cfg.Models {
				explicit = append(explicit, mc.Model())
			}
			models := registry.Merge(discovered, explicit)
			sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(models)
			}
			printModelTable(models)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory to scan (defaults to config models_dir or ~/models/llm)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the merged registry as JSON")
	return cmd
}

func printModelTable(models []types.Model) {
	if len(models) == 0 {
		fmt.Println("no models found")
		return
	}
	header := color.New(color.FgCyan, color.Bold)
	header.Printf("%-36s %-9s %-4s %-8s %s\n", "ID", "RUNTIME", "ACC", "QUANT", "PATH")
	for _, m := range models {
		clr := color.New(color.FgGreen)
		if m.Runtime == types.RuntimeGenie {
			clr = color.New(color.FgMagenta)
		}
		acc := string(m.Accelerator)
		if acc == "" {
			acc = string(types.AcceleratorCPU)
		}
		id := m.ID
		if m.SupportsVision {
			id += " [vision]"
		}
		fmt.Printf("%-36s ", id)
		clr.Printf("%-9s", string(m.Runtime))
		fmt.Printf(" %-4s %-8s %s\n", acc, m.Quant, m.Path)
	}
}
