// Package cli builds the command-line surface of a training run: one flag per
// registered class parameter, layered with configuration files and
// environment variables into a single resolved configuration tree.
//
// Resolution order, lowest to highest priority: declared defaults, default
// config files, files passed with --config (in order), environment variables
// (when enabled) and finally explicit command-line flags.
//
// The package also owns process-level concerns like exit codes.
package cli
