package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/MeKo-Tech/pocrop/internal/pdf"
	"github.com/spf13/cobra"
)

func newCropCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crop INPUT OUTPUT",
		Short: "Infer the content area of a PDF and crop it",
		Long: `Infer the odd and even page content rectangles of INPUT and write a copy
cropped to them to OUTPUT. Odd pages receive the odd rectangle and even pages
the even rectangle; both have the same size.

Examples:
  pocrop crop book.pdf book-cropped.pdf
  pocrop crop book.pdf out.pdf --dry-run
  pocrop crop secret.pdf out.pdf --password hunter2`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCrop(cmd, args[0], args[1])
		},
	}

	cmd.Flags().Bool("dry-run", false, "print the crop boxes without writing OUTPUT")
	addPasswordFlags(cmd)
	return cmd
}

func (a *app) runCrop(cmd *cobra.Command, in, out string) (err error) {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	creds := passwordCredentials(cmd)

	s, err := a.newSession(creds)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close())
	}()

	res, err := s.infer(cmd.Context(), in)
	if err != nil {
		return err
	}

	if err := printCropBoxes(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	if err := pdf.NewCropper(creds).Apply(in, out, res); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return err
}

func printCropBoxes(w io.Writer, res *margins.Result) error {
	_, err := fmt.Fprintf(w, "%s: %d pages\n  odd pages:  %s\n  even pages: %s\n",
		res.Document, res.PageCount, pdf.BoxDescription(res.Odd), pdf.BoxDescription(res.Even))
	return err
}
