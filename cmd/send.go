/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/allbin/go-serialsession/internal/tui/styles"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send [data] <device>",
	Short: "Open a session and write data to the device",
	Long: `Open a serial session and write data to its output stream.

Data can be provided as:
- Command line argument: send "Hello World" /dev/ttyUSB0
- From stdin (pipe): echo "test data" | serialsession send /dev/ttyUSB0
- Interactive mode: serialsession send /dev/ttyUSB0 (prompts for input)

Example usage:
  serialsession send "AT+GMR" /dev/ttyUSB0 --newline
  serialsession send 48656c6c6f /dev/ttyS0 --hex --baud 9600
  echo "test" | serialsession send /dev/ttyUSB0`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var data string
		var devicePath string

		// Parse arguments: either "send data device" or "send device"
		if len(args) == 1 {
			devicePath = args[0]
			stat, err := os.Stdin.Stat()
			if err != nil || (stat.Mode()&os.ModeCharDevice) != 0 {
				// No pipe input, use interactive mode
				data = promptForData()
			} else {
				stdinData, err := io.ReadAll(os.Stdin)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error reading from stdin: %v\n", err)
					os.Exit(1)
				}
				data = strings.TrimRight(string(stdinData), "\r\n")
			}
		} else {
			data = args[0]
			devicePath = args[1]
		}

		addNewline, _ := cmd.Flags().GetBool("newline")
		hexMode, _ := cmd.Flags().GetBool("hex")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		if hexMode {
			processedData, err := parseHexString(data)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Invalid hex data: %v\n", err)
				os.Exit(1)
			}
			data = processedData
		}

		if addNewline && !hexMode {
			data += "\n"
		}

		if err := sendData(devicePath, data, timeout); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", styles.ErrorStyle.Render("✗"), err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().BoolP("newline", "n", false, "Add newline character to the end of data")
	sendCmd.Flags().BoolP("hex", "x", false, "Interpret data as hexadecimal (e.g., '48656c6c6f' for 'Hello')")
	sendCmd.Flags().DurationP("timeout", "t", 5*time.Second, "Timeout for writing data")
}

func promptForData() string {
	fmt.Print(styles.InfoStyle.Render("Enter data to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}

func parseHexString(hexStr string) (string, error) {
	// Remove common hex prefixes and whitespace
	hexStr = strings.ReplaceAll(hexStr, " ", "")
	hexStr = strings.ReplaceAll(hexStr, "0x", "")
	hexStr = strings.ReplaceAll(hexStr, "0X", "")

	if len(hexStr)%2 != 0 {
		return "", fmt.Errorf("hex string must have even length")
	}

	var result strings.Builder
	for i := 0; i < len(hexStr); i += 2 {
		hexByte := hexStr[i : i+2]
		var b byte
		if _, err := fmt.Sscanf(hexByte, "%x", &b); err != nil {
			return "", fmt.Errorf("invalid hex byte '%s': %v", hexByte, err)
		}
		result.WriteByte(b)
	}

	return result.String(), nil
}

// preview shortens data to 50 characters and masks non-printable bytes
func preview(data string) string {
	if len(data) > 50 {
		data = data[:50] + "..."
	}
	return strings.Map(func(r rune) rune {
		if r < 32 || r > 126 {
			return '·'
		}
		return r
	}, data)
}

func sendData(devicePath, data string, timeout time.Duration) error {
	fmt.Printf("%s Opening %s...\n", styles.InfoStyle.Render("⚡"), devicePath)

	openCtx, cancelOpen := helperContext()
	defer cancelOpen()

	s, err := openSession(openCtx, devicePath, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer s.Close()

	fmt.Printf("%s Opened at %s\n", styles.SuccessStyle.Render("✓"), s.Config())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fmt.Printf("%s Sending %d bytes...\n", styles.InfoStyle.Render("📤"), len(data))

	n, err := s.OutputStream().WriteContext(ctx, []byte(data))
	if err != nil {
		return fmt.Errorf("failed to send data: %w", err)
	}

	fmt.Printf("%s Successfully sent %d bytes\n", styles.SuccessStyle.Render("✓"), n)
	fmt.Printf("%s Data: %s\n", styles.InfoStyle.Render("📋"), preview(data))

	return nil
}
