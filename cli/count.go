package cli

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// NewCountCmd creates the count command.
func NewCountCmd() *cobra.Command {
	var flags barFlags

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Draw a progress bar that advances once per input line",
		Long: `Draw a progress bar that advances once per line read from stdin.

Set --total to the number of lines expected. Lines are consumed and
discarded; only the bar is written to stdout.`,
		Example: `  find . -name '*.go' | termbar count --total "$(find . -name '*.go' | wc -l)"
  seq 1 200 | termbar count --total 200 --prefix lines`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp()
			if err != nil {
				return err
			}

			driver := newBarDriver(cmd, app, &flags)
			if err := countLines(cmd.Context(), driver, cmd.InOrStdin()); err != nil {
				driver.abort()
				return err
			}

			return driver.finish(cmd, app)
		},
	}

	flags.register(cmd)

	return cmd
}

// countLines advances the bar by one for every line read from r. The
// bar is drawn once before the first line so an empty input still
// shows it. Cancelling ctx returns immediately even while r is blocked.
func countLines(ctx context.Context, d *barDriver, r io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}

	d.update(0)

	lineCh, errCh := readLines(ctx, r)
	lines := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-lineCh:
			if !ok {
				if err := <-errCh; err != nil {
					return ErrInput("failed to read input", err)
				}
				return nil
			}

			lines++
			d.update(float64(lines))
		}
	}
}

// readLines signals once per line of r, with no limit on line length.
// The error channel receives the read error, or nil at EOF, before the
// line channel is closed. A reader stopped by ctx sends nil.
func readLines(ctx context.Context, r io.Reader) (<-chan struct{}, <-chan error) {
	lineCh := make(chan struct{})
	errCh := make(chan error, 1)

	go func() {
		var readErr error
		defer func() {
			errCh <- readErr
			close(lineCh)
		}()

		send := func() bool {
			select {
			case lineCh <- struct{}{}:
				return true
			case <-ctx.Done():
				return false
			}
		}

		br := bufio.NewReader(r)
		partial := false
		for {
			chunk, err := br.ReadSlice('\n')
			switch {
			case err == nil:
				partial = false
				if !send() {
					return
				}
			case errors.Is(err, bufio.ErrBufferFull):
				// Rest of an over-long line follows in the next chunk.
				partial = true
			case errors.Is(err, io.EOF):
				if partial || len(chunk) > 0 {
					send()
				}
				return
			default:
				readErr = err
				return
			}
		}
	}()

	return lineCh, errCh
}
