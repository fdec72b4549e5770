package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/kubegen/internal/kubectl"
)

// newRunner creates the process runner behind every kubectl call.
var newRunner = func() kubectl.Runner {
	return kubectl.ExecRunner{}
}

// newKubectl builds a kubectl client from the loaded configuration.
func newKubectl() (*kubectl.Client, error) {
	return kubectl.New(newRunner(), kubectl.OptionsFromConfig(cfg))
}

// printBlock writes kubectl output, ensuring it ends with a newline.
func printBlock(w io.Writer, s string) {
	if s == "" {
		return
	}
	fmt.Fprint(w, s)
	if !strings.HasSuffix(s, "\n") {
		fmt.Fprintln(w)
	}
}

// out is where commands write plain, uncolored output.
func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
