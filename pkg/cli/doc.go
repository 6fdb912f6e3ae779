/*
Package cli provides command-line interface utilities for DialGuard.

The cli package includes error types, progress reporters, and common CLI
helpers used by the dialguard command.

Error Types:

Commands wrap failures in typed errors so the root command can map them
to exit codes:

	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("engine", err.Error())
	}

Progress Reporting:

For long-running operations such as audit exports, use the progress
reporter:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(totalEntries)
	for i, entry := range entries {
		// Export the entry
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
