/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"strconv"

	"github.com/allbin/go-serialsession"
	"github.com/allbin/go-serialsession/internal/tui/styles"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <device>",
	Short: "Check, and optionally repair, read/write access to a device",
	Long: `Check whether the current user can read and write a serial device.

With --repair, a missing permission is fixed the same way opening a session
does it: the privileged helper (--escalate-cmd) receives a chmod script on
its standard input, and access is checked again afterwards.

Examples:
  serialsession check /dev/ttyUSB0
  serialsession check /dev/ttyS1 --repair
  serialsession check /dev/ttyS1 --repair --escalate-cmd su`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		devicePath := args[0]
		repair, _ := cmd.Flags().GetBool("repair")

		printDeviceInfo(devicePath)

		err := serial.CheckAccess(devicePath)
		printAccess(err)
		if err == nil {
			return
		}
		if !repair || errors.Is(err, serial.ErrDeviceNotFound) {
			os.Exit(1)
		}

		if err := repairAccess(devicePath); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", styles.ErrorStyle.Render("✗"), err)
			os.Exit(1)
		}

		err = serial.CheckAccess(devicePath)
		printAccess(err)
		if err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolP("repair", "r", false, "Run the privileged helper when access is missing")
}

func printDeviceInfo(devicePath string) {
	fmt.Printf("Device: %s\n\n", devicePath)

	var st unix.Stat_t
	if err := unix.Stat(devicePath, &st); err != nil {
		fmt.Printf("  Stat:      %v\n", err)
		return
	}

	info, err := os.Stat(devicePath)
	if err == nil {
		fmt.Printf("  Mode:      %s\n", info.Mode())
	}
	fmt.Printf("  Owner:     %s:%s (%d:%d)\n", userName(st.Uid), groupName(st.Gid), st.Uid, st.Gid)

	if st.Mode&unix.S_IFMT == unix.S_IFCHR {
		fmt.Printf("  Type:      character device %d:%d\n", unix.Major(uint64(st.Rdev)), unix.Minor(uint64(st.Rdev)))
	} else {
		fmt.Printf("  Type:      %s\n", styles.WarningStyle.Render("not a character device"))
	}
}

func printAccess(err error) {
	switch {
	case err == nil:
		fmt.Printf("  Access:    %s\n", styles.SuccessStyle.Render("✓ read/write"))
	case errors.Is(err, serial.ErrDeviceNotFound):
		fmt.Printf("  Access:    %s\n", styles.ErrorStyle.Render("✗ device not found"))
	default:
		fmt.Printf("  Access:    %s\n", styles.ErrorStyle.Render("✗ permission denied"))
	}
}

// repairAccess runs the chmod script through the configured helper
func repairAccess(devicePath string) error {
	if viper.GetBool("no-escalate") {
		return fmt.Errorf("%w: escalation disabled by --no-escalate", serial.ErrPermissionDenied)
	}

	script, err := serial.EscalationScript(devicePath)
	if err != nil {
		return err
	}

	helper := viper.GetStringSlice("escalate-cmd")
	if !serial.IsEscalationAvailable(helper) {
		return fmt.Errorf("%w: helper %v not found", serial.ErrEscalationFailed, helper)
	}

	fmt.Printf("\n%s Running %v...\n", styles.InfoStyle.Render("⚡"), helper)

	ctx, cancel := helperContext()
	defer cancel()

	code, err := newEscalator().Run(ctx, script)
	if err != nil {
		return explainOpenError(fmt.Errorf("%w: %w", serial.ErrPermissionDenied, err))
	}
	if code != 0 {
		return fmt.Errorf("%w: helper exit status %d", serial.ErrPermissionDenied, code)
	}

	fmt.Printf("%s Helper exited with status 0\n", styles.SuccessStyle.Render("✓"))
	return nil
}

func userName(uid uint32) string {
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil {
		return u.Username
	}
	return "?"
}

func groupName(gid uint32) string {
	if g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10)); err == nil {
		return g.Name
	}
	return "?"
}
