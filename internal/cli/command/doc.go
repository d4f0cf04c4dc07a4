// Package command defines the mirrorcheck command line with urfave/cli/v2.
//
// The command takes exactly one positional argument, the database home.
// Reports go to stdout, logs and errors to stderr. Run maps the outcome to
// a process exit status.
package command
