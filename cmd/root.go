package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "humanhash",
	Short: "Reversible human-readable hashes",
	Long: `Humanhash turns integers, digests and UUIDs into strings of dictionary
words such as "brave-otter-0042", and turns them back.

A format is a template like "{{adjective}}-{{noun}}-{{decimal 4}}". Named
formats and extra dictionaries live in the config file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/humanhash/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("plugin-dir", "", "Directory of dictionary plugins (default is $HOME/.humanhash/plugins)")
	rootCmd.PersistentFlags().String("wordlist-dir", "", "Directory of extra word lists (default is $HOME/.humanhash/words)")
	rootCmd.PersistentFlags().String("database", "", "Label database (default is $HOME/.humanhash/humanhash.db)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("plugin_dir", rootCmd.PersistentFlags().Lookup("plugin-dir"))
	viper.BindPFlag("wordlist_dir", rootCmd.PersistentFlags().Lookup("wordlist-dir"))
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search order: ~/.config/humanhash, ~/.humanhash, current dir
		viper.AddConfigPath(home + "/.config/humanhash")
		viper.AddConfigPath(home + "/.humanhash")
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("HUMANHASH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		// Config loaded
	}
}
