package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"voxpitch/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.StatusResponse
			if err := fetchJSON(ctx, "/api/status", &status); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			color := shouldColorize(out)

			running := colorize("running", ansiGreen, color)
			if !status.Running {
				running = colorize("stopped", ansiRed, color)
			}
			fmt.Fprintf(out, "Daemon: %s (pid %d, uptime %s)\n", running, status.PID,
				(time.Duration(status.UptimeSeconds) * time.Second).String())

			for _, dep := range status.Dependencies {
				state := colorize("available", ansiGreen, color)
				if !dep.Available {
					state = colorize("missing", ansiRed, color)
				}
				fmt.Fprintf(out, "%s (%s): %s", dep.Name, dep.Command, state)
				if dep.Detail != "" {
					fmt.Fprintf(out, " - %s", dep.Detail)
				}
				fmt.Fprintln(out)
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Kind", "Count"},
				[][]string{
					{"originals", strconv.Itoa(status.Artifacts.Originals)},
					{"transformed", strconv.Itoa(status.Artifacts.Derived)},
				},
			))
			return nil
		},
	}
}

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show recent transform jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			var jobList api.JobsResponse
			path := fmt.Sprintf("/api/jobs?limit=%d", limit)
			if err := fetchJSON(ctx, path, &jobList); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(jobList.Jobs) == 0 {
				fmt.Fprintln(out, "No transform jobs recorded")
				return nil
			}

			rows := make([][]string, 0, len(jobList.Jobs))
			for _, job := range jobList.Jobs {
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.SourceID,
					strconv.FormatFloat(job.Parameter, 'f', -1, 64),
					job.Status,
					job.CreatedAt.Local().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Source", "Value", "Status", "Created"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to show")
	return cmd
}

func fetchJSON(ctx *commandContext, path string, target any) error {
	base, err := ctx.apiBase()
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(base + path)
	if err != nil {
		return fmt.Errorf("connect to daemon at %s: %w (is `voxpitch serve` running?)", base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
