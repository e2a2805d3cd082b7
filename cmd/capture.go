/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allbin/go-serialsession"
	"github.com/spf13/cobra"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <device> <output-file>",
	Short: "Capture serial data to a file",
	Long: `Open a serial session and append everything read from its input stream
to a file. Runs until interrupted (Ctrl+C), or for --duration if set.

Example usage:
  serialsession capture /dev/ttyUSB0 data.log
  serialsession capture /dev/ttyUSB0 output.txt --baud 9600
  serialsession capture /dev/ttyUSB0 capture.log --console --duration 1m`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		devicePath := args[0]
		outputPath := args[1]

		bufferSize, _ := cmd.Flags().GetInt("buffer")
		showConsole, _ := cmd.Flags().GetBool("console")
		duration, _ := cmd.Flags().GetDuration("duration")

		if err := runCapture(devicePath, outputPath, bufferSize, showConsole, duration); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Int("buffer", 4096, "Read buffer size")
	captureCmd.Flags().BoolP("console", "c", false, "Display incoming data on console while capturing")
	captureCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until interrupted)")
}

func runCapture(devicePath, outputPath string, bufferSize int, showConsole bool, duration time.Duration) error {
	openCtx, cancelOpen := helperContext()
	defer cancelOpen()

	s, err := openSession(openCtx, devicePath, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer s.Close()

	// Open output file in append mode
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer file.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	fmt.Fprintf(os.Stderr, "Capturing data from %s (%s) to %s\n", devicePath, s.Config(), outputPath)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	var console io.Writer
	if showConsole {
		console = os.Stdout
	}

	startTime := time.Now()
	written, err := capture(ctx, s.InputStream(), file, console, bufferSize)
	fmt.Fprintf(os.Stderr, "\nCapture complete: %d bytes written in %v\n", written, time.Since(startTime).Round(time.Millisecond))
	return err
}

// capture copies from in to out until ctx is done. A cancelled context is a
// clean stop, not an error.
func capture(ctx context.Context, in *serial.InputStream, out, console io.Writer, bufferSize int) (int64, error) {
	buffer := make([]byte, bufferSize)
	var total int64

	for {
		n, err := in.ReadContext(ctx, buffer)
		if n > 0 {
			written, werr := out.Write(buffer[:n])
			total += int64(written)
			if werr != nil {
				return total, fmt.Errorf("write error: %w", werr)
			}
			if console != nil {
				console.Write(buffer[:n])
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return total, nil
			}
			if errors.Is(err, serial.ErrPortClosed) {
				return total, nil
			}
			return total, fmt.Errorf("read error: %w", err)
		}
	}
}
