// Command chem is the chemistry language's CLI entrypoint, ported from
// chemistry_lang/main.py's CH class. The GUI front-end main.py also
// dispatched to (ch_gui.py) is out of scope; `-g` is accepted and stubbed
// per SPEC_FULL.md §6.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cx-luo/chem-lang/cherr"
	"github.com/cx-luo/chem-lang/interp"
)

var (
	filePath string
	gui      bool
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "chem [path]",
		Short: "Chemistry Language interpreter",
		Long:  "Chemistry Language interpreter\n\nRun a source file, or start a REPL with no arguments.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if gui {
				fmt.Println("graphical REPL is not built in this configuration")
				return nil
			}
			path := filePath
			if path == "" && len(args) == 1 {
				path = args[0]
			}
			if path != "" {
				return runFile(path)
			}
			repl()
			return nil
		},
	}
	root.Flags().StringVarP(&filePath, "file", "f", "", "run the given source file, same as `chem run <path>`")
	root.Flags().BoolVarP(&gui, "gui", "g", false, "start the graphical REPL (not built in this configuration)")
	root.AddCommand(newRunCommand())
	return root
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <path>",
		Short: "Run a chemistry source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0])
		},
	}
}

func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newHandler builds the error handler shared by both the file and REPL
// paths, logging to chem.log the way the original's module-level logger
// writes to a file handler alongside its colorized stream handler.
func newHandler() *cherr.Handler {
	return cherr.New("chem.log")
}

func newInterpreter(errs *cherr.Handler) *interp.Interpreter {
	return interp.New(errs)
}

func main() {
	Execute()
}
