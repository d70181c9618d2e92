package main

import (
	"eznv-restore/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// eznv-restore reinstalls a machine's packages from a backup gist written by
// eznv_backup.sh:
//   - Downloads the gist (or reads a downloaded gist archive) and keeps its "*.install" files
//   - Loads restore_installers.json, which maps each "<name>.install" file to a command template
//   - Runs the template once per listed item, one command at a time, and reports
//     captured stdout/stderr in color
//
// Error handling strategy:
//   - A missing gist id, a failed gist request or a missing installer config stops the run
//     before anything is installed
//   - Unknown install files and failing installer commands are reported and skipped,
//     so one broken package never blocks the rest of the restore
func main() {
	cmd.Execute()
}
