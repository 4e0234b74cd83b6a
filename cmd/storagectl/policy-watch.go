package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// policyWatchCmd represents the policy watch command
var policyWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a trigger file and reapply the policies on change",
	Long: `Watch a file and reapply the test policies whenever it changes.

Database resets and migrations drop the test policies. Point this command
at a file your reset tooling touches afterwards and the policies come back
without manual steps.

Example:
  storagectl policy watch /run/storage/policy-trigger`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchPolicies(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch policies: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	policyCmd.AddCommand(policyWatchCmd)
}

func watchPolicies(filename string) error {
	applier, err := newPolicyApplier()
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filename); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Watching %s; policies reapply on change\n", filename)

	// Debounce: editors and touch(1) often fire several events per change.
	var last time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if time.Since(last) < time.Second {
				continue
			}
			last = time.Now()

			results, err := applier.Apply(context.Background())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Reapply failed: %v\n", err)
				continue
			}
			for _, r := range results {
				fmt.Printf("%-8s %q on %s\n", r.Status, r.Policy.Name, r.Policy.Relation())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)

		case <-sigs:
			fmt.Println("Stopping watcher")
			return nil
		}
	}
}
