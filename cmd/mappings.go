package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hcm-migrate/internal/mapping"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Inspect and share mapping rules",
}

var mappingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective mapping rules as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadMappingConfig(cmd.Context())
		if err != nil {
			return err
		}
		data, err := mapping.Encode(cfg)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

var mappingsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the built-in mapping rules to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(args[0]); err == nil {
			return fmt.Errorf("%s already exists", args[0])
		}
		store := &mapping.FileStore{Path: args[0]}
		if err := store.Save(cmd.Context(), mapping.DefaultConfig()); err != nil {
			return err
		}
		fmt.Printf("Default mapping rules written to %s\n", args[0])
		return nil
	},
}

var mappingsPushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Replace the rules in the active mapping store with a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := (&mapping.FileStore{Path: args[0]}).Load(ctx)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("refusing to push invalid rules: %w", err)
		}

		store, sc, err := openActiveStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()
		fmt.Printf("🦅 Connected to %s (%s)\n", sc.Name, sc.Driver)

		if err := store.Save(ctx, cfg); err != nil {
			return err
		}
		fmt.Printf("Pushed %d rules to %s\n", len(cfg.Rules), sc.Name)
		return nil
	},
}

var mappingsPullCmd = &cobra.Command{
	Use:   "pull <file>",
	Short: "Write the rules of the active mapping store to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, sc, err := openActiveStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		cfg, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if err := (&mapping.FileStore{Path: args[0]}).Save(ctx, cfg); err != nil {
			return err
		}
		fmt.Printf("Pulled %d rules from %s into %s\n", len(cfg.Rules), sc.Name, args[0])
		return nil
	},
}

func init() {
	RootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsShowCmd, mappingsExportCmd, mappingsPushCmd, mappingsPullCmd)
}
