// Command amlreport turns AML wallet screening results into compliance
// reports.
//
//	amlreport render  [flags] input.json...   PDF or Markdown report
//	amlreport blocks  [flags] input.json      block sequence as JSON
//	amlreport assess  [flags] input.json      derived compliance records
//	amlreport serve   [flags]                 HTTP service
//	amlreport archive list|get|payload        archived reports
//	amlreport version
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/ui"
)

func main() {
	ui.ConfigureFromEnv()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// env carries the process streams so commands stay testable.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		printUsage(stderr)
		return defaults.ExitUserError
	}

	var err error
	switch args[0] {
	case "render":
		err = e.cmdRender(args[1:])
	case "blocks":
		err = e.cmdBlocks(args[1:])
	case "assess":
		err = e.cmdAssess(args[1:])
	case "serve":
		err = e.cmdServe(args[1:])
	case "archive":
		err = e.cmdArchive(args[1:])
	case "version", "-version", "--version":
		ui.PrintVersion(stdout)
	case "help", "-h", "-help", "--help":
		printUsage(stdout)
	default:
		err = usageErrorf("unknown command %q", args[0])
	}

	code := exitCode(err)
	if err != nil && !errors.Is(err, errHelp) {
		ui.PrintError(stderr, "%v", err)
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "\nRun '%s help' for usage.\n", defaults.ToolName)
		}
	}
	return code
}

func printUsage(w io.Writer) {
	ui.PrintBanner(w)
	fmt.Fprint(w, `Usage:
  amlreport render  [flags] input.json...   render PDF (default) or Markdown reports
  amlreport blocks  [flags] input.json      print the assembled block sequence as JSON
  amlreport assess  [flags] input.json      print compliance records derived from a report
  amlreport serve   [flags]                 run the HTTP service
  amlreport archive list|get|payload        inspect archived reports
  amlreport version                         print version information

Use "-" as input to read from stdin. Run 'amlreport <command> -h' for flags.

Environment:
  AMLREPORT_THEME          theme YAML file (overridden by -theme)
  AMLREPORT_OTLP_ENDPOINT  OTLP gRPC endpoint for traces (serve)
  NO_COLOR                 disable colored terminal output
`)
}
