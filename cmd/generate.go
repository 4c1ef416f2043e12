package cmd

import (
	"fmt"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hcm-migrate/internal/export"
	"hcm-migrate/internal/mapping"
	"hcm-migrate/internal/validate"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate Level and Association files",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(viper.GetString("output.format"))
		if err != nil {
			return err
		}
		dir := viper.GetString("output.dir")

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		start := time.Now()

		if _, err := s.BuildHierarchy(); err != nil {
			return err
		}
		res, err := s.Generate()
		if err != nil {
			return err
		}
		if len(res.Files) == 0 {
			return fmt.Errorf("no files generated: %v", res.Errors)
		}

		uiprogress.Start()
		bar := uiprogress.AddBar(len(res.Files)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Writing: "
		})
		paths, err := export.WriteDir(dir, res.Files, format, func(*export.GeneratedFile) {
			bar.Incr()
		})
		uiprogress.Stop()
		if err != nil {
			return err
		}

		manifestPath, err := s.Manifest(format).Write(dir)
		if err != nil {
			return err
		}

		fmt.Println("\n📊 Summary Report:")
		total := 0
		for i, f := range res.Files {
			icon := "✓"
			if len(f.Warnings) > 0 || f.CellErrors > 0 {
				icon = "!"
			}
			fmt.Printf("[%s] [%02d/%02d] %-40s : %d rows\n", icon, i+1, len(res.Files), f.FileName(format), f.DataRows())
			for _, w := range f.Warnings {
				fmt.Printf("    └ %s\n", w)
			}
			if f.CellErrors > 0 {
				fmt.Printf("    └ %d cell(s) kept their original value after a failed transformation\n", f.CellErrors)
			}
			if f.Kind == mapping.TargetLevel {
				total += f.DataRows()
			}
		}
		for _, e := range res.Errors {
			fmt.Printf("[x] %v\n", e)
		}
		fmt.Println("--------------------------------------------------")
		fmt.Printf("Level rows: %d (source units: %d)\n", total, s.Units.Len())
		fmt.Printf("Files written: %d to %s\n", len(paths), dir)
		fmt.Printf("Manifest: %s\n", manifestPath)

		if viper.GetBool("output.validate") {
			rep, err := s.Validate()
			if err != nil {
				return err
			}
			counts := rep.Counts()
			fmt.Printf("Validation: ready=%t critical=%d high=%d\n", rep.Ready(), counts[validate.Critical], counts[validate.High])
		}
		Log.Infof("Generate Done! Time Elapsed: %s", time.Since(start))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("out", "o", "", "output directory (overrides config)")
	generateCmd.Flags().String("format", "", "output format: xlsx or csv (overrides config)")
	generateCmd.Flags().Bool("validate", false, "run the integrity checks after generating")

	viper.BindPFlag("output.dir", generateCmd.Flags().Lookup("out"))
	viper.BindPFlag("output.format", generateCmd.Flags().Lookup("format"))
	viper.BindPFlag("output.validate", generateCmd.Flags().Lookup("validate"))
	viper.SetDefault("output.dir", "output")
	viper.SetDefault("output.format", "xlsx")
}
