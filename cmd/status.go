package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or a specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}
	jobID := args[0]
	return getJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		config := job["config"].(map[string]interface{})
		fmt.Printf("  Tactic: %s\n", config["tactic"])
		if score, ok := job["bestScore"].(float64); ok && score > 0 {
			fmt.Printf("  Score: %.6g\n", score)
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	config := status["config"].(map[string]interface{})
	fmt.Println("Configuration:")
	fmt.Printf("  Tactic: %s\n", config["tactic"])
	if algo, ok := config["algo"].(string); ok && algo != "" {
		fmt.Printf("  Algo: %s\n", algo)
	}
	if iters, ok := config["maxIterations"].(float64); ok && iters > 0 {
		fmt.Printf("  Max iterations: %.0f\n", iters)
	}
	fmt.Println()

	fmt.Println("Progress:")
	if v, ok := status["initialScore"].(float64); ok && v > 0 {
		fmt.Printf("  Initial score: %.6g\n", v)
	}
	if v, ok := status["bestScore"].(float64); ok {
		fmt.Printf("  Best score: %.6g\n", v)
	}
	if v, ok := status["iterations"].(float64); ok {
		fmt.Printf("  Iterations: %.0f\n", v)
	}
	if v, ok := status["fitStatus"].(string); ok && v != "" {
		fmt.Printf("  Search status: %s\n", v)
	}
	if circle, ok := status["bestCircle"].(map[string]interface{}); ok {
		center := circle["center"].(map[string]interface{})
		fmt.Printf("  Circle: center=(%.6g, %.6g) r=%.6g\n", center["x"], center["y"], circle["r"])
	}
	if v, ok := status["elapsed"].(float64); ok {
		elapsed := time.Duration(v * float64(time.Second))
		fmt.Printf("  Elapsed: %s\n", elapsed.Round(time.Millisecond))
	}
	if v, ok := status["error"].(string); ok && v != "" {
		fmt.Printf("\nError: %s\n", v)
	}

	return nil
}
