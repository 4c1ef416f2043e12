package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

var (
	snapshotIn string
	withOutput bool
	jsonReport bool
	strict     bool
)

var errNotReady = errors.New("migration not ready: critical findings present")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the integrity and quality checks",
	Long: `Checks the extracts, the hierarchy and (with --output) the files that
would be generated. With --hierarchy the stored snapshot is checked against a
fresh computation and any drift is reported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		if snapshotIn != "" {
			if err := s.LoadSnapshot(snapshotIn); err != nil {
				return err
			}
		} else if _, err := s.BuildHierarchy(); err != nil {
			return err
		}
		if withOutput {
			if s.Hierarchy == nil {
				if _, err := s.BuildHierarchy(); err != nil {
					return err
				}
			}
			if _, err := s.Generate(); err != nil {
				return err
			}
		}

		rep, err := s.Validate()
		if err != nil {
			return err
		}
		if jsonReport {
			err = rep.WriteJSON(os.Stdout)
		} else {
			err = rep.WriteText(os.Stdout)
		}
		if err != nil {
			return err
		}
		if strict && !rep.Ready() {
			return errNotReady
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&snapshotIn, "hierarchy", "", "stored hierarchy snapshot to check for drift")
	validateCmd.Flags().BoolVar(&withOutput, "output", false, "also generate the files in memory and check them")
	validateCmd.Flags().BoolVar(&jsonReport, "json", false, "print the report as JSON")
	validateCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the migration is not ready")
}
