package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	Log     = logrus.New()
)

var RootCmd = &cobra.Command{
	Use:   "hcm-migrate",
	Short: "SAP HCM org hierarchy migration tool",
	Long: `
  _   _  ____ __  __   __  __ ___ ____ ____      _  _____ _____
 | | | |/ ___|  \/  | |  \/  |_ _/ ___|  _ \    / \|_   _| ____|
 | |_| | |   | |\/| | | |\/| || | |  _| |_) |  / _ \ | | |  _|
 |  _  | |___| |  | | | |  | || | |_| |  _ <  / ___ \| | | |___
 |_| |_|\____|_|  |_| |_|  |_|___\____|_| \_\/_/   \_\_| |_____|

HCM MIGRATE - HRP1000/HRP1001 to Level & Association files
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		Log.SetOutput(os.Stderr)
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		Log.SetLevel(logrus.InfoLevel)
		if verbose || viper.GetBool("log.verbose") {
			Log.SetLevel(logrus.DebugLevel)
		}
		if used := viper.ConfigFileUsed(); used != "" {
			Log.WithField("file", used).Debug("config loaded")
		}
		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./hcm-migrate.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	RootCmd.PersistentFlags().String("units", "", "HRP1000 extract (csv or xlsx)")
	RootCmd.PersistentFlags().String("relationships", "", "HRP1001 extract (csv or xlsx)")
	RootCmd.PersistentFlags().String("mapping", "", "mapping rules file (yaml)")

	viper.BindPFlag("sources.units", RootCmd.PersistentFlags().Lookup("units"))
	viper.BindPFlag("sources.relationships", RootCmd.PersistentFlags().Lookup("relationships"))
	viper.BindPFlag("mapping.file", RootCmd.PersistentFlags().Lookup("mapping"))

	viper.SetDefault("sources.units", "HRP1000.csv")
	viper.SetDefault("sources.relationships", "HRP1001.csv")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Executable directory first, then the working directory.
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		viper.AddConfigPath(".")

		viper.SetConfigName("hcm-migrate")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HCM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "failed to read config:", err)
		}
	}
}
