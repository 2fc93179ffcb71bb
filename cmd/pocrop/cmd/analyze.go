package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/pocrop/internal/batch"
	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze PATH...",
		Short: "Report the inferred layout of PDF files",
		Long: `Run margin inference on each PDF and report the result without cropping:
per-page content boxes, running header/footer texts, the dominant fragment
kind, and the per-parity rectangles before and after correction.

A directory PATH contributes the PDF files it contains.

Examples:
  pocrop analyze book.pdf
  pocrop analyze library/ --recursive --exclude '*-draft.pdf'
  pocrop analyze *.pdf --format json --output report.json`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args)
		},
	}

	cmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
	cmd.Flags().StringSlice("exclude", nil, "file name patterns to skip (e.g. '*-draft.pdf')")
	addPasswordFlags(cmd)

	v := a.loader.GetViper()
	_ = v.BindPFlag("output.format", cmd.Flags().Lookup("format"))
	_ = v.BindPFlag("output.file", cmd.Flags().Lookup("output"))
	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) (err error) {
	recursive, _ := cmd.Flags().GetBool("recursive")
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	files, err := batch.Discovery{Recursive: recursive, Exclude: exclude}.DiscoverPDFs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no PDF files found")
	}

	s, err := a.newSession(passwordCredentials(cmd))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()

	var (
		results []*margins.Result
		errs    []error
	)
	for _, file := range files {
		res, err := s.infer(cmd.Context(), file)
		if err != nil {
			if cmd.Context().Err() != nil {
				return err
			}
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}

	if err := a.writeReport(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (a *app) writeReport(stdout io.Writer, results []*margins.Result) error {
	path := a.cfg.Output.File
	if path == "" {
		return a.renderReport(stdout, results)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return a.writeAndClose(f, results)
}

// writeAndClose renders the report into wc and closes it. A close failure is
// reported when rendering succeeded.
func (a *app) writeAndClose(wc io.WriteCloser, results []*margins.Result) error {
	err := a.renderReport(wc, results)
	if cerr := wc.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close output file: %w", cerr)
	}
	return err
}

func (a *app) renderReport(w io.Writer, results []*margins.Result) error {
	if a.cfg.Output.Format == "json" {
		return writeJSONReport(w, results)
	}
	return writeTextReport(w, results)
}

func writeJSONReport(w io.Writer, results []*margins.Result) error {
	if results == nil {
		results = []*margins.Result{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func writeTextReport(w io.Writer, results []*margins.Result) error {
	title := cases.Title(language.English)
	var b strings.Builder

	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Document: %s\n", res.Document)
		fmt.Fprintf(&b, "  Run ID:         %s\n", res.RunID)
		fmt.Fprintf(&b, "  Pages:          %d (%d without content)\n", res.PageCount, res.PagesWithoutContent())
		fmt.Fprintf(&b, "  Fragments:      %d (%d box, %d line)\n", res.FragmentCount, res.Tally.Box, res.Tally.Line)
		fmt.Fprintf(&b, "  Blocks:         %d\n", res.BlockCount)
		fmt.Fprintf(&b, "  Dominant kind:  %s\n", title.String(res.DominantKind.String()))
		fmt.Fprintf(&b, "  Median width:   %.1f\n", res.MedianLineWidth)
		fmt.Fprintf(&b, "  Trimmed odd:    %s\n", res.Estimate.Trimmed.Odd)
		fmt.Fprintf(&b, "  Trimmed even:   %s\n", res.Estimate.Trimmed.Even)
		fmt.Fprintf(&b, "  Mirrored:       %s\n", yesNo(res.Estimate.Mirrored))
		fmt.Fprintf(&b, "  Even from odd:  %s\n", yesNo(res.Estimate.EvenFromOdd))
		fmt.Fprintf(&b, "  Odd pages:      %s\n", res.Odd)
		fmt.Fprintf(&b, "  Even pages:     %s\n", res.Even)

		if len(res.HeaderFooters) == 0 {
			b.WriteString("  Header/footer:  none\n")
		} else {
			quoted := make([]string, len(res.HeaderFooters))
			for j, text := range res.HeaderFooters {
				quoted[j] = strconv.Quote(text)
			}
			fmt.Fprintf(&b, "  Header/footer:  %s\n", strings.Join(quoted, ", "))
		}

		b.WriteString("  Page boxes:\n")
		for _, page := range res.PageBoxes.Pages() {
			fmt.Fprintf(&b, "    %4d  %s\n", page, res.PageBoxes[page])
		}
		fmt.Fprintf(&b, "  Timings:        %s\n", res.Timings)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
