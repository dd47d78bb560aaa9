package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var errNotConfirmed = errors.New("import not confirmed")

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		yes        bool
		archives   []string
		skipLinked bool
		format     string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import the newest batch, or the named archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "text" && format != "html" {
				return fmt.Errorf("unsupported format %q (want text or html)", format)
			}

			p, err := ctx.newPipeline(skipLinked)
			if err != nil {
				return err
			}

			if !yes {
				plan, err := p.Plan(cmd.Context(), archives...)
				if err != nil {
					return err
				}
				if !isInteractive(cmd.InOrStdin()) {
					return errors.New("refusing to run without confirmation; pass --yes when not on a terminal")
				}
				printPlan(cmd, plan)
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				if !ok {
					return errNotConfirmed
				}
			}

			rep, runErr := p.Run(cmd.Context(), archives)
			if rep != nil {
				render := rep.RenderText
				if format == "html" {
					render = rep.RenderHTML
				}
				if err := render(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringArrayVar(&archives, "archive", nil, "Archive to import, in order (repeatable)")
	cmd.Flags().BoolVar(&skipLinked, "skip-linked", false, "Skip glossary documents that already link to media")
	cmd.Flags().StringVar(&format, "format", "text", "Report format: text or html")
	return cmd
}

func isInteractive(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// confirm reads one answer line; only y or yes proceeds.
func confirm(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "Proceed? [y/N] ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
