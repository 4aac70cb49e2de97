package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type status struct {
	Target                     string   `json:"target"`
	State                      string   `json:"state"`
	StopReason                 string   `json:"stop_reason"`
	Elapsed                    string   `json:"elapsed"`
	Interval                   string   `json:"interval"`
	Limit                      string   `json:"limit"`
	TotalProbes                int64    `json:"total_probes"`
	FailedProbes               int64    `json:"failed_probes"`
	CurrentConsecutiveFailures int64    `json:"current_consecutive_failures"`
	MaxConsecutiveFailures     int64    `json:"max_consecutive_failures"`
	SuccessRate                *float64 `json:"success_rate"`
	Episodes                   int      `json:"episodes"`
}

func main() {
	stop := flag.Bool("stop", false, "ask the monitor to stop (needs an admin key)")
	flag.Parse()

	api := strings.TrimRight(os.Getenv("API_BASE"), "/")
	if api == "" {
		api = "http://localhost:8080"
	}
	key := os.Getenv("API_KEY")
	client := &http.Client{Timeout: 10 * time.Second}

	if *stop {
		resp, err := do(client, http.MethodPost, api+"/api/stop", key)
		if err != nil {
			fmt.Println("Error contacting API:", err)
			os.Exit(1)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			fmt.Println("API returned status:", resp.Status)
			os.Exit(1)
		}
		fmt.Println("Stop requested; the monitor will finish its current probe and write reports.")
		return
	}

	resp, err := do(client, http.MethodGet, api+"/api/status", key)
	if err != nil {
		fmt.Println("Error contacting API:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Println("API returned status:", resp.Status)
		os.Exit(1)
	}

	var st status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Println("Bad response:", err)
		os.Exit(1)
	}
	printStatus(os.Stdout, st)
}

func do(c *http.Client, method, url, key string) (*http.Response, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	return c.Do(req)
}

func printStatus(w io.Writer, st status) {
	state := st.State
	if st.StopReason != "" {
		state = st.StopReason
	}
	fmt.Fprintf(w, "Target:          %s (%s)\n", st.Target, state)
	fmt.Fprintf(w, "Elapsed:         %s of %s, every %s\n", st.Elapsed, st.Limit, st.Interval)
	fmt.Fprintf(w, "Probes:          %d total, %d dropped\n", st.TotalProbes, st.FailedProbes)
	if st.SuccessRate != nil {
		fmt.Fprintf(w, "Success rate:    %.2f%%\n", *st.SuccessRate*100)
	} else {
		fmt.Fprintln(w, "Success rate:    no data")
	}
	fmt.Fprintf(w, "Outages:         %d (longest %d, current %d)\n",
		st.Episodes, st.MaxConsecutiveFailures, st.CurrentConsecutiveFailures)
}
