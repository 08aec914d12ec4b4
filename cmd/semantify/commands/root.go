// Package commands implements the CLI commands for semantify.
package commands

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/semantify/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "semantify",
	Short: "Rewrite generic div/span markup into semantic HTML5",
	Long: `Semantify infers the role of each div and span from its class and id
attributes and rewrites it as the matching HTML5 element (header, nav,
main, section, article, footer, aside). Elements that match no rule are
unwrapped so only their children remain.

Examples:
  # Convert a file to stdout
  semantify convert page.html

  # Fetch a page and save the result
  semantify convert https://example.com -o semantic_output.html

  # Markdown outline of a page read from stdin
  cat page.html | semantify convert --format markdown

  # Put a custom rule ahead of the built-in table
  semantify convert page.html --rule hero=header

  # Serve the converter over HTTP
  semantify serve --listen :8080`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		logger.Init(logger.Options{
			Debug:  viper.GetBool("debug"),
			Quiet:  viper.GetBool("quiet"),
			JSON:   viper.GetBool("log_json"),
			Output: cmd.ErrOrStderr(),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.semantify.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("log-json", false, "log as JSON")

	// Conversion flags shared by convert and serve
	flags.StringArray("rule", nil, "extra keyword=tag rule checked before the table (can be repeated)")
	flags.String("rules-file", "", "YAML or JSON file with a rules list replacing the built-in table")
	flags.Bool("pretty", false, "indent the rendered HTML")
	flags.Bool("fragment", false, "render only the contents of <body>")
	flags.String("max-size", "10MB", "max input size (e.g. 512KB, 10MB, 0=unlimited)")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("rules_file", flags.Lookup("rules-file"))
	_ = viper.BindPFlag("pretty", flags.Lookup("pretty"))
	_ = viper.BindPFlag("fragment", flags.Lookup("fragment"))
	_ = viper.BindPFlag("max_size", flags.Lookup("max-size"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".semantify")
		viper.SetConfigType("yaml")
	}

	// Environment variables, optionally from a .env file
	_ = godotenv.Load()
	viper.SetEnvPrefix("SEMANTIFY")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
