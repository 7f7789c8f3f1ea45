package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cwbudde/arcfit/internal/geom"
	"github.com/cwbudde/arcfit/internal/store"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	fsStore, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	s := NewServer("127.0.0.1:0", fsStore)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJob(t *testing.T, ts *httptest.Server, config JobConfig) *Job {
	t.Helper()

	body, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		t.Fatalf("Failed to decode job: %v", err)
	}
	return &job
}

func waitForState(t *testing.T, s *Server, jobID string, want JobState) *Job {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		job, exists := s.jobManager.GetJob(jobID)
		if exists && job.State == want {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := s.jobManager.GetJob(jobID)
	t.Fatalf("Job %s never reached %s, last state: %v", jobID, want, job)
	return nil
}

func TestCreateJobWithGenerator(t *testing.T) {
	s, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Generator: &geom.ArcConfig{
			Center:    geom.Point{X: 0, Y: 0},
			Radius:    10,
			NumPoints: 16,
			ArcRatio:  1,
		},
		Tactic: "radius",
	})

	done := waitForState(t, s, job.ID, StateCompleted)

	if done.BestCircle == nil {
		t.Fatal("Completed job should have a best circle")
	}
	if math.Abs(done.BestCircle.R-10) > 0.01 {
		t.Errorf("Expected radius ~10, got %g", done.BestCircle.R)
	}
	if math.Abs(done.BestCircle.Center.X) > 0.01 || math.Abs(done.BestCircle.Center.Y) > 0.01 {
		t.Errorf("Expected center ~(0,0), got %v", done.BestCircle.Center)
	}
	if done.FitStatus == "" {
		t.Error("Completed job should report a fit status")
	}
	if done.EndTime == nil {
		t.Error("Completed job should have an end time")
	}
}

func TestCreateJobDefaultsTactic(t *testing.T) {
	_, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Points: []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}},
	})

	if job.Config.Tactic != "radius" {
		t.Errorf("Expected default tactic radius, got %q", job.Config.Tactic)
	}
}

func TestCreateJobRejectsTooFewPoints(t *testing.T) {
	_, ts := newTestServer(t)

	body, _ := json.Marshal(JobConfig{
		Points: []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}},
		Tactic: "radius",
	})

	resp, err := http.Post(ts.URL+"/api/v1/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateJobDegenerateInputFails(t *testing.T) {
	s, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Points: []geom.Point{{X: 2, Y: 3}, {X: 2, Y: 3}, {X: 2, Y: 3}},
		Tactic: "radius",
	})

	done := waitForState(t, s, job.ID, StateFailed)
	if done.Error == "" {
		t.Error("Failed job should carry an error message")
	}
}

func TestJobStatusEndpoint(t *testing.T) {
	s, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Points: []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}, {X: 0, Y: -1}},
		Tactic: "angle",
	})
	waitForState(t, s, job.ID, StateCompleted)

	resp, err := http.Get(ts.URL + "/api/v1/jobs/" + job.ID + "/status")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status["state"] != string(StateCompleted) {
		t.Errorf("Expected completed, got %v", status["state"])
	}
	if status["bestCircle"] == nil {
		t.Error("Status should include the best circle")
	}
}

func TestJobStatusPollsDuringRun(t *testing.T) {
	_, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Generator: &geom.ArcConfig{Center: geom.Point{X: 3, Y: -2}, Radius: 10, NumPoints: 30, ArcRatio: 0.5},
		Tactic:    "radius",
		MinStep:   1e-12,
	})

	// Hammer the status endpoint while the worker is updating the job;
	// every response must be well-formed regardless of timing.
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/api/v1/jobs/" + job.ID + "/status")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		var status map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			resp.Body.Close()
			t.Fatalf("Failed to decode status: %v", err)
		}
		resp.Body.Close()

		switch status["state"] {
		case string(StateCompleted):
			return
		case string(StateFailed), string(StateCancelled):
			t.Fatalf("Job ended in unexpected state %v (%v)", status["state"], status["error"])
		}
	}
	t.Fatal("Job never completed")
}

func TestJobStatusNotFound(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/jobs/nonexistent")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestListJobsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	postJob(t, ts, JobConfig{
		Points: []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}},
	})

	resp, err := http.Get(ts.URL + "/api/v1/jobs")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	var jobs []Job
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		t.Fatalf("Failed to decode jobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("Expected 1 job, got %d", len(jobs))
	}
}

func TestPlotEndpoint(t *testing.T) {
	s, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Generator: &geom.ArcConfig{Radius: 5, NumPoints: 12, ArcRatio: 1},
		Tactic:    "radius",
	})
	waitForState(t, s, job.ID, StateCompleted)

	resp, err := http.Get(ts.URL + "/api/v1/jobs/" + job.ID + "/plot.png")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
}

func TestTraceEndpoint(t *testing.T) {
	s, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Generator: &geom.ArcConfig{Center: geom.Point{X: 4, Y: 4}, Radius: 5, NumPoints: 12, ArcRatio: 0.5},
		Tactic:    "radius",
	})
	done := waitForState(t, s, job.ID, StateCompleted)

	resp, err := http.Get(ts.URL + "/api/v1/jobs/" + job.ID + "/trace")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var entries []store.TraceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("Failed to decode trace: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("Trace should record improvements")
	}
	last := entries[len(entries)-1]
	if math.Abs(last.Score-done.BestScore) > 1e-12 {
		t.Errorf("Last trace score %g should match best score %g", last.Score, done.BestScore)
	}
}

func TestDeleteJobEndpoint(t *testing.T) {
	s, ts := newTestServer(t)

	job := postJob(t, ts, JobConfig{
		Points: []geom.Point{{X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}},
	})
	waitForState(t, s, job.ID, StateCompleted)

	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/v1/jobs/%s", ts.URL, job.ID), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	if _, exists := s.jobManager.GetJob(job.ID); exists {
		t.Error("Deleted job should be gone")
	}
}

func TestIndexEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode index: %v", err)
	}
	if body["service"] != "arcfit" {
		t.Errorf("Unexpected service name: %v", body["service"])
	}
}

func TestCORSPreflights(t *testing.T) {
	_, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/jobs", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("OPTIONS failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Missing CORS header")
	}
}
