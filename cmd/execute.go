package cmd

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
