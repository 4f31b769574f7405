package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"
)

// Interrupted is returned by a batch stopped between files. Finished lists
// the files treated before the stop, whatever their outcome, and Skipped
// those never started. It matches context.Canceled with errors.Is.
type Interrupted struct {
	Finished []string
	Skipped  []string
}

func (e *Interrupted) Error() string {
	total := len(e.Finished) + len(e.Skipped)
	return fmt.Sprintf("cancelled after %d of %d file%s", len(e.Finished), total, plural(total))
}

func (e *Interrupted) Unwrap() error { return context.Canceled }

// SetupSignalHandler creates a context that cancels on first Ctrl+C.
// Second Ctrl+C calls os.Exit(1). Returns the cancellable context.
func SetupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
		// Second signal: hard exit.
		<-sigCh
		os.Exit(1)
	}()

	return ctx, cancel
}

// RunCancellable runs fn with context cancelled on ESC or first Ctrl+C.
// Second Ctrl+C exits the process. A cancelled run prints what fn left
// undone (see Cancelled) and returns nil.
func RunCancellable(ctx context.Context, out io.Writer, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up Ctrl+C handler.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	var secondSigOnce sync.Once
	go func() {
		select {
		case <-sigCh:
			cancel()
			// Second signal: hard exit.
			secondSigOnce.Do(func() {
				go func() {
					<-sigCh
					os.Exit(1)
				}()
			})
		case <-ctx.Done():
		}
	}()

	// Try ESC detection on stdin if it's a terminal.
	if f, ok := out.(*os.File); ok && isTerminal(f) {
		startESCDetection(cancel)
	}

	err := fn(ctx)
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		Cancelled(out, err)
		return nil
	}
	return err
}

// startESCDetection puts stdin in raw mode and watches for ESC (\x1b).
// Calls cancel() when ESC is detected. Restores terminal state on return.
func startESCDetection(cancel context.CancelFunc) {
	stdinFd := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFd) {
		return
	}

	oldState, err := term.MakeRaw(stdinFd)
	if err != nil {
		return
	}

	go func() {
		defer term.Restore(stdinFd, oldState)

		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				return
			}
			if buf[0] == 0x1b { // ESC
				cancel()
				return
			}
			if buf[0] == 0x03 { // Ctrl+C in raw mode
				cancel()
				return
			}
		}
	}()
}

// Cancelled prints a cancellation message. When err is an Interrupted
// batch, the finished files are counted and every skipped file is listed.
func Cancelled(out io.Writer, err error) {
	var in *Interrupted
	if !errors.As(err, &in) {
		fmt.Fprintln(out, Error("Cancelled."))
		return
	}
	fmt.Fprintln(out, Warn(fmt.Sprintf("Cancelled: %d of %d file%s finished, %d skipped",
		len(in.Finished), len(in.Finished)+len(in.Skipped), plural(len(in.Finished)+len(in.Skipped)), len(in.Skipped))))
	for _, f := range in.Skipped {
		fmt.Fprintf(out, "  %s\n", Muted("skipped "+f))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
