package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"
)

type ServiceStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Version   string                   `json:"version"`
	Services  map[string]ServiceStatus `json:"services"`
}

func main() {
	url := "http://localhost:8080/health"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	fmt.Printf("🔍 Testing health endpoint: %s\n", url)

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Printf("❌ Error connecting to health endpoint: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("❌ Error reading response: %v\n", err)
		os.Exit(1)
	}

	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		fmt.Printf("❌ Error parsing JSON response: %v\n", err)
		fmt.Printf("📄 Response Body: %s\n", string(body))
		os.Exit(1)
	}

	fmt.Printf("📊 Response Status: %s (version %s, %s)\n", resp.Status, health.Version, health.Timestamp)

	names := make([]string, 0, len(health.Services))
	for name := range health.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		svc := health.Services[name]
		marker := "✅"
		if svc.Status != "ok" {
			marker = "⚠️"
		}
		fmt.Printf("   %s %s: %s", marker, name, svc.Status)
		if svc.Error != "" {
			fmt.Printf(" (%s)", svc.Error)
		}
		fmt.Println()
	}

	// A degraded Redis still serves requests; only a failed database is fatal.
	if resp.StatusCode != http.StatusOK || health.Status == "error" {
		fmt.Printf("❌ Health check failed: %s\n", health.Status)
		os.Exit(1)
	}

	fmt.Printf("✅ Health check passed: %s\n", health.Status)
}
