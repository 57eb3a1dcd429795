// Package cmd provides the command-line interface implementation for zstow.
//
// This package contains all the subcommand implementations for the zstow CLI
// tool. It uses the Cobra library for command structure and Fang for styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and entry point
//   - run: Full scan-bucket-archive-report pipeline
//   - scan: Size measurement and reporting without archiving
//   - buckets: Size bucket table listing
//   - history: Run history listing from the SQLite database
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command. The root command coordinates all
// subcommands; the actual pipeline work lives in the pipeline package and
// its collaborators.
package cmd
