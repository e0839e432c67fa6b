// Package main - agitator
// Load generator for stress testing the quarantine server: concurrent
// WebSocket viewers spamming state requests while HTTP clients hammer
// the purchase and skill endpoints.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Config for the agitator
type Config struct {
	WSServerURL    string
	APIBaseURL     string
	NumViewers     int
	NumBuyers      int
	ActionInterval time.Duration
	TestDuration   time.Duration
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	PurchasesOK      int64
	PurchasesDenied  int64
	Errors           int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

// apiAction is one random call against the control surface.
type apiAction struct {
	path string
	body map[string]interface{}
}

func main() {
	wsURL := flag.String("ws", "ws://localhost:8080/ws", "WebSocket server URL")
	apiURL := flag.String("api", "http://localhost:8080", "HTTP API base URL")
	viewers := flag.Int("viewers", 50, "Number of concurrent WebSocket viewers")
	buyers := flag.Int("buyers", 10, "Number of concurrent API clients")
	interval := flag.Duration("interval", 100*time.Millisecond, "Action interval per client")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	flag.Parse()

	config := Config{
		WSServerURL:    *wsURL,
		APIBaseURL:     *apiURL,
		NumViewers:     *viewers,
		NumBuyers:      *buyers,
		ActionInterval: *interval,
		TestDuration:   *duration,
	}

	fmt.Println("=========================================")
	fmt.Println("🔥 AGITATOR - Stress Test Tool")
	fmt.Println("=========================================")
	fmt.Printf("WS Server:  %s\n", config.WSServerURL)
	fmt.Printf("API Server: %s\n", config.APIBaseURL)
	fmt.Printf("Viewers:    %d\n", config.NumViewers)
	fmt.Printf("Buyers:     %d\n", config.NumBuyers)
	fmt.Printf("Interval:   %v\n", config.ActionInterval)
	fmt.Printf("Duration:   %v\n", config.TestDuration)
	fmt.Println("=========================================")

	// Setup graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\n⚠️ Interrupt received, stopping...")
		cancel()
	}()

	stats := runStressTest(ctx, config)

	printResults(stats, config)
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\n🚀 Starting clients...")

	for i := 0; i < config.NumViewers; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runViewer(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	for i := 0; i < config.NumBuyers; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runBuyer(ctx, clientID, config, stats)
		}(i)
	}

	fmt.Printf("✅ All %d clients started\n\n", config.NumViewers+config.NumBuyers)

	// Progress updates
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent := atomic.LoadInt64(&stats.MessagesSent)
				recv := atomic.LoadInt64(&stats.MessagesReceived)
				errs := atomic.LoadInt64(&stats.Errors)
				ok := atomic.LoadInt64(&stats.PurchasesOK)
				denied := atomic.LoadInt64(&stats.PurchasesDenied)
				fmt.Printf("📊 Progress: Sent=%d Recv=%d Bought=%d Denied=%d Errors=%d\n",
					sent, recv, ok, denied, errs)
			}
		}
	}()

	wg.Wait()
	return stats
}

func runViewer(ctx context.Context, clientID int, config Config, stats *Stats) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, config.WSServerURL, nil)
	if err != nil {
		log.Printf("Viewer %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// Start receiver goroutine
	go func() {
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)
		}
	}()

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()

			if err := conn.WriteJSON(map[string]string{"type": "REQUEST_STATE"}); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}

			latency := time.Since(start)
			atomic.AddInt64(&stats.MessagesSent, 1)

			stats.mu.Lock()
			stats.Latencies = append(stats.Latencies, latency)
			stats.mu.Unlock()
		}
	}
}

func runBuyer(ctx context.Context, clientID int, config Config, stats *Stats) {
	client := &http.Client{Timeout: 5 * time.Second}

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			action := generateRandomAction()

			body, _ := json.Marshal(action.body)
			req, err := http.NewRequestWithContext(ctx, http.MethodPost,
				config.APIBaseURL+action.path, bytes.NewReader(body))
			if err != nil {
				log.Printf("Buyer %d: request build failed: %v", clientID, err)
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}
			resp.Body.Close()
			atomic.AddInt64(&stats.MessagesSent, 1)

			switch resp.StatusCode {
			case http.StatusOK:
				atomic.AddInt64(&stats.PurchasesOK, 1)
			case http.StatusConflict:
				// Insolvent or gated. Expected under load.
				atomic.AddInt64(&stats.PurchasesDenied, 1)
			default:
				atomic.AddInt64(&stats.Errors, 1)
			}
		}
	}
}

func generateRandomAction() apiAction {
	switch rand.Intn(6) {
	case 0:
		return apiAction{"/api/purchase/police", map[string]interface{}{"amount": 1 + rand.Intn(50)}}
	case 1:
		return apiAction{"/api/purchase/healthworkers", map[string]interface{}{"amount": 1 + rand.Intn(50)}}
	case 2:
		return apiAction{"/api/purchase/testkits", map[string]interface{}{"amount": 1 + rand.Intn(20)}}
	case 3:
		return apiAction{"/api/skills/point", nil}
	case 4:
		codes := []string{"sd", "mm", "cf", "ld"}
		return apiAction{"/api/measures/toggle", map[string]interface{}{"code": codes[rand.Intn(len(codes))]}}
	default:
		skills := []string{"med_research_1", "pol_training", "test_dna", "ld_awareness", "cit_masks"}
		return apiAction{"/api/skills/activate", map[string]interface{}{"skill": skills[rand.Intn(len(skills))]}}
	}
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("📊 STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	ok := atomic.LoadInt64(&stats.PurchasesOK)
	denied := atomic.LoadInt64(&stats.PurchasesDenied)
	errs := atomic.LoadInt64(&stats.Errors)

	fmt.Printf("Messages Sent:     %d\n", sent)
	fmt.Printf("Messages Received: %d\n", recv)
	fmt.Printf("Purchases OK:      %d\n", ok)
	fmt.Printf("Purchases Denied:  %d\n", denied)
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / config.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f msg/sec\n", throughput)

	if len(stats.Latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = stats.Latencies[0], stats.Latencies[0]

		for _, l := range stats.Latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(stats.Latencies))

		fmt.Printf("\nLatency:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n-----------------------------------------")
	if errs == 0 {
		fmt.Println("✅ TEST PASSED: System handled the load")
	} else if float64(errs)/float64(sent+1) < 0.05 {
		fmt.Println("⚠️ TEST WARNING: Some errors detected")
	} else {
		fmt.Println("❌ TEST FAILED: High error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"messages_sent":      sent,
		"messages_received":  recv,
		"purchases_ok":       ok,
		"purchases_denied":   denied,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"viewers":  config.NumViewers,
			"buyers":   config.NumBuyers,
			"interval": config.ActionInterval.String(),
			"duration": config.TestDuration.String(),
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	os.WriteFile("stress_test_results.json", jsonData, 0644)
	fmt.Println("\n📁 Results saved to stress_test_results.json")
}
