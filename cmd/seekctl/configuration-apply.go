package main

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/seek-in-go/pkg/config"
)

// configurationApplyCmd represents the configuration apply command
var configurationApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Restart the SEEK server to apply new configuration",
	Long: `Validate the current state of the configuration file and then signal
the SEEK server to restart with it.

Note that this will NOT incorporate changes to environment variables because
Linux process environments are static once a process has started.

Use --test to validate configuration without restarting.

Example:
  seekctl configuration apply
  seekctl configuration apply --test`,
	Run: func(cmd *cobra.Command, args []string) {
		testMode, _ := cmd.Flags().GetBool("test")

		if err := applyConfiguration(testMode); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationApplyCmd)
	configurationApplyCmd.Flags().Bool("test", false, "Validate configuration without restarting")
}

func validateConfiguration() (*config.SeekConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyConfiguration(testMode bool) error {
	fmt.Println("Validating configuration...")

	cfg, err := validateConfiguration()
	if err != nil {
		return err
	}
	fmt.Printf("Config file: %s\n", cfg.ConfigFilePath())

	if os.Getenv("DATABASE_URL") == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	fmt.Println("Configuration is valid.")

	if testMode {
		fmt.Println("Test mode: not restarting server.")
		return nil
	}

	pids, err := signalServer(syscall.SIGHUP)
	if err != nil {
		return err
	}
	fmt.Printf("Sent reload signal to %v\n", pids)
	return nil
}

// signalServer sends sig to every running "seekctl server" process
func signalServer(sig syscall.Signal) ([]int, error) {
	output, err := exec.Command("pgrep", "-f", "seekctl server").Output()
	if err != nil {
		return nil, fmt.Errorf("no running seekctl server found")
	}

	var pids []int
	for _, field := range strings.Fields(string(output)) {
		pid, err := strconv.Atoi(field)
		if err != nil || pid == os.Getpid() {
			continue
		}
		process, err := os.FindProcess(pid)
		if err != nil {
			return pids, fmt.Errorf("failed to find process %d: %w", pid, err)
		}
		if err := process.Signal(sig); err != nil {
			return pids, fmt.Errorf("failed to signal process %d: %w", pid, err)
		}
		pids = append(pids, pid)
	}
	if len(pids) == 0 {
		return nil, fmt.Errorf("no running seekctl server found")
	}
	return pids, nil
}
