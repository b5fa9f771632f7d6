// Command shadow_compare replays mobile API requests against both the
// legacy Django deployment and the Go gateway and diffs the responses.
// Run during the cutover to prove the legacy wire contract is intact.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"
)

type probe struct {
	Name    string `json:"name"`
	Method  string `json:"method"`
	Path    string `json:"path"`
	Body    string `json:"body,omitempty"`
	Blocker bool   `json:"blocker"`
	// Fields whose values legitimately differ between deployments
	// (timestamps, processing_time_ms) and are dropped before diffing.
	Ignore []string `json:"ignore,omitempty"`
}

type outcome struct {
	probe        probe
	legacyStatus int
	goStatus     int
	match        bool
	err          error
}

func main() {
	var (
		goBase     string
		legacyBase string
		probesPath string
		timeout    time.Duration
	)
	flag.StringVar(&goBase, "go-base", "http://localhost:8080", "Go gateway base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:8000", "legacy Django base URL")
	flag.StringVar(&probesPath, "probes", "scripts/shadow_compare/probes.json", "probe definitions")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		log.Fatalf("load probes: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	blockers := 0
	for _, p := range probes {
		out := run(client, legacyBase, goBase, p)
		report(out)
		if p.Blocker && (out.err != nil || !out.match) {
			blockers++
		}
	}

	fmt.Printf("\n%d probes, %d blocking differences\n", len(probes), blockers)
	if blockers > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var probes []probe
	if err := json.Unmarshal(data, &probes); err != nil {
		return nil, err
	}
	if len(probes) == 0 {
		return nil, fmt.Errorf("no probes in %s", path)
	}
	return probes, nil
}

func run(client *http.Client, legacyBase, goBase string, p probe) outcome {
	out := outcome{probe: p}

	legacyStatus, legacyBody, err := fetch(client, legacyBase, p)
	if err != nil {
		out.err = fmt.Errorf("legacy: %w", err)
		return out
	}
	goStatus, goBody, err := fetch(client, goBase, p)
	if err != nil {
		out.err = fmt.Errorf("go: %w", err)
		return out
	}

	out.legacyStatus = legacyStatus
	out.goStatus = goStatus
	out.match = legacyStatus == goStatus && jsonEqual(legacyBody, goBody, p.Ignore)
	return out
}

func fetch(client *http.Client, base string, p probe) (int, []byte, error) {
	method := strings.ToUpper(p.Method)
	if method == "" {
		method = http.MethodGet
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p.Path, "/")

	var body io.Reader
	if p.Body != "" {
		body = strings.NewReader(p.Body)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, nil, err
	}
	if p.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

// jsonEqual compares two payloads structurally, dropping ignored keys at
// any depth and collapsing whole-number floats so 70 == 70.0.
func jsonEqual(a, b []byte, ignore []string) bool {
	if bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b)) {
		return true
	}
	var av, bv interface{}
	if err := json.Unmarshal(a, &av); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &bv); err != nil {
		return false
	}
	ignored := map[string]bool{}
	for _, key := range ignore {
		ignored[key] = true
	}
	av = scrub(av, ignored)
	bv = scrub(bv, ignored)
	return reflect.DeepEqual(av, bv)
}

func scrub(v interface{}, ignored map[string]bool) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		clean := make(map[string]interface{}, len(val))
		for _, k := range keys {
			if ignored[k] {
				continue
			}
			clean[k] = scrub(val[k], ignored)
		}
		return clean
	case []interface{}:
		for i := range val {
			val[i] = scrub(val[i], ignored)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	default:
		return val
	}
}

func report(out outcome) {
	label := "OK"
	switch {
	case out.err != nil:
		label = "ERROR"
	case !out.match:
		label = "DIFF"
	}
	fmt.Printf("[%-5s] %s %s %s\n", label, out.probe.Method, out.probe.Path, out.probe.Name)
	if out.err != nil {
		fmt.Printf("        %v\n", out.err)
		return
	}
	if !out.match {
		fmt.Printf("        legacy=%d go=%d blocker=%t\n", out.legacyStatus, out.goStatus, out.probe.Blocker)
	}
}
