package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pocrop/internal/margins"
	"github.com/MeKo-Tech/pocrop/internal/metrics"
	"github.com/MeKo-Tech/pocrop/internal/pdf"
	"github.com/spf13/cobra"
)

const progressLogInterval = 2 * time.Second

func addPasswordFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("password", "p", "", "user password for encrypted PDFs")
	cmd.Flags().String("owner-password", "", "owner password for encrypted PDFs")
}

func passwordCredentials(cmd *cobra.Command) *pdf.PasswordCredentials {
	user, _ := cmd.Flags().GetString("password")
	owner, _ := cmd.Flags().GetString("owner-password")
	if user == "" && owner == "" {
		return nil
	}
	return &pdf.PasswordCredentials{UserPassword: user, OwnerPassword: owner}
}

// session runs inferences with one configuration and collects their metrics.
type session struct {
	app      *app
	creds    *pdf.PasswordCredentials
	opts     margins.Options
	recorder *metrics.Recorder
}

func (a *app) newSession(creds *pdf.PasswordCredentials) (*session, error) {
	opts, err := a.cfg.ToMarginsOptions()
	if err != nil {
		return nil, err
	}
	opts.Progress = margins.NewLogProgressCallback(slog.Default(), progressLogInterval)
	return &session{app: a, creds: creds, opts: opts, recorder: metrics.NewRecorder()}, nil
}

// infer reads path and runs margin inference on it.
func (s *session) infer(ctx context.Context, path string) (*margins.Result, error) {
	start := time.Now()

	doc, err := pdf.NewReader(s.app.cfg.ToReaderConfig(s.creds)).Read(ctx, path)
	if err == nil {
		var res *margins.Result
		res, err = margins.Infer(ctx, doc, s.opts)
		if err == nil {
			s.recorder.ObserveResult(res, time.Since(start))
			slog.Info("Inferred margins", "run_id", res.RunID, "document", path,
				"odd", res.Odd.String(), "even", res.Even.String(), "duration", time.Since(start))
			return res, nil
		}
	}

	s.recorder.ObserveFailure(err, time.Since(start))
	return nil, describeFailure(path, err)
}

// close writes the metrics textfile when one is configured.
func (s *session) close() error {
	path := s.app.cfg.Metrics.Textfile
	if path == "" {
		return nil
	}
	if err := s.recorder.WriteTextfile(path); err != nil {
		return err
	}
	slog.Debug("Wrote metrics textfile", "path", path)
	return nil
}

// describeFailure adds a hint for the failures a user can act on.
func describeFailure(path string, err error) error {
	var noContent *margins.NoContentError
	switch {
	case errors.As(err, &noContent):
		return fmt.Errorf("%w; %s has no extractable text, so no crop box can be derived (scanned pages are not supported)",
			err, path)
	case errors.Is(err, pdf.ErrEncrypted):
		return fmt.Errorf("%w (use --password or --owner-password)", err)
	default:
		return err
	}
}
