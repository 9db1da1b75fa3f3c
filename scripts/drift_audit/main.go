// Command drift_audit calls the reconciliation endpoints of a running API
// instance, prints a drift report per event, and optionally repairs every
// drifting event. Exits non-zero when drift remains, so it can gate cron
// checks or deploys.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type driftReport struct {
	EventID              string   `json:"event_id"`
	OrphanRegistrations  []string `json:"orphan_registrations"`
	MissingRegistrations []string `json:"missing_registrations"`
	OrphanTeamRefs       []string `json:"orphan_team_refs"`
	DanglingTeamRecords  []string `json:"dangling_team_records"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		base    string
		prefix  string
		token   string
		repair  bool
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.StringVar(&token, "token", os.Getenv("ADMIN_TOKEN"), "admin bearer token")
	flag.BoolVar(&repair, "repair", false, "repair drifting events after reporting")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("an admin token is required (-token or ADMIN_TOKEN)")
	}

	client := &http.Client{Timeout: timeout}
	root := strings.TrimRight(base, "/") + prefix

	reports, err := fetchReports(client, root, token)
	if err != nil {
		log.Fatalf("failed to fetch drift reports: %v", err)
	}

	if len(reports) == 0 {
		fmt.Println("All event indexes agree with the student documents.")
		return
	}

	printReports(reports)

	if repair {
		repaired := 0
		for _, r := range reports {
			if err := repairEvent(client, root, token, r.EventID); err != nil {
				log.Printf("repair %s failed: %v", r.EventID, err)
				continue
			}
			repaired++
		}
		fmt.Printf("Repaired %d of %d drifting events\n", repaired, len(reports))
		if repaired == len(reports) {
			return
		}
	}
	os.Exit(1)
}

func fetchReports(client *http.Client, root, token string) ([]driftReport, error) {
	body, err := call(client, http.MethodGet, root+"/admin/reconcile", token)
	if err != nil {
		return nil, err
	}
	var reports []driftReport
	if err := json.Unmarshal(body, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}

func repairEvent(client *http.Client, root, token, eventID string) error {
	_, err := call(client, http.MethodPost, root+"/admin/reconcile/"+eventID+"/repair", token)
	return err
}

func call(client *http.Client, method, url, token string) (json.RawMessage, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s %s: status %d, unparseable body", method, url, resp.StatusCode)
	}
	if env.Error != nil {
		return nil, fmt.Errorf("%s %s: %s (%s)", method, url, env.Error.Message, env.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d", method, url, resp.StatusCode)
	}
	return env.Data, nil
}

func printReports(reports []driftReport) {
	fmt.Println("Drift Audit Report")
	fmt.Println("==================")
	for _, r := range reports {
		fmt.Printf("[DRIFT] event %s\n", r.EventID)
		printList("orphan registrations", r.OrphanRegistrations)
		printList("missing registrations", r.MissingRegistrations)
		printList("orphan team refs", r.OrphanTeamRefs)
		printList("dangling team records", r.DanglingTeamRecords)
	}
	fmt.Printf("%d drifting event(s)\n", len(reports))
}

func printList(label string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Printf("  %s: %s\n", label, strings.Join(ids, ", "))
}
