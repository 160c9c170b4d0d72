// Command seeder posts finished match results to the ingest endpoint as
// newline-delimited JSON.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/footyliveliness/api/internal/models"
)

const defaultURL = "http://localhost:8080/api/v1/ingest/results"

func main() {
	url := flag.String("url", defaultURL, "ingest endpoint")
	token := flag.String("token", os.Getenv("INGEST_TOKEN"), "ingest token (plain, not hashed)")
	file := flag.String("file", "", "results file: a JSON array or one result per line; empty posts a demo result")
	chunk := flag.Int("chunk", 200, "results per request")
	flag.Parse()

	if *token == "" {
		log.Fatal("an ingest token is required (-token or INGEST_TOKEN)")
	}

	results, err := loadResults(*file)
	if err != nil {
		log.Fatalf("Failed to load results: %v", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	for start := 0; start < len(results); start += *chunk {
		end := min(start+*chunk, len(results))
		if err := post(client, *url, *token, results[start:end]); err != nil {
			log.Fatalf("Failed to post results %d-%d: %v", start, end, err)
		}
	}
	fmt.Printf("Posted %d results\n", len(results))
}

func loadResults(path string) ([]models.MatchResult, error) {
	if path == "" {
		return []models.MatchResult{demoResult()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var results []models.MatchResult
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, err
		}
		return results, nil
	}

	var results []models.MatchResult
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var r models.MatchResult
		if err := json.Unmarshal([]byte(text), &r); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		results = append(results, r)
	}
	return results, sc.Err()
}

func post(client *http.Client, url, token string, results []models.MatchResult) error {
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for i := range results {
		if err := enc.Encode(&results[i]); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(http.MethodPost, url, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %s\nResponse: %s\n", resp.Status, strings.TrimSpace(string(respBody)))
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}

func demoResult() models.MatchResult {
	return models.MatchResult{
		MatchID:           "seed-0001",
		Season:            "2025/26",
		Round:             14,
		Kickoff:           time.Date(2025, 11, 30, 16, 30, 0, 0, time.UTC),
		HomeTeam:          "Liverpool",
		AwayTeam:          "Manchester City",
		HomeGoals:         2,
		AwayGoals:         2,
		HomeXG:            2.31,
		AwayXG:            1.87,
		HomeShotsOnTarget: 7,
		AwayShotsOnTarget: 6,
		HomeBigChances:    4,
		AwayBigChances:    3,
		HomeCorners:       6,
		AwayCorners:       5,
		HomeTouchesOppBox: 38,
		AwayTouchesOppBox: 31,
		HomeShots:         17,
		AwayShots:         14,
	}
}
