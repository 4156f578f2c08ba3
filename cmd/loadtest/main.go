// Command loadtest hammers a running server with concurrent purchases and
// checks that exactly initialStock of them succeed and the final quantity
// is zero.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

const (
	initialStock  = 20
	totalRequests = 50
)

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message *string         `json:"message"`
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) do(method, path string, body any) (int, envelope, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return 0, envelope{}, err
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return 0, envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, envelope{}, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, envelope{}, err
	}
	return resp.StatusCode, env, nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base url")
	flag.Parse()

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 10 * time.Second}}

	// Fresh admin each run so reruns don't collide on the email
	email := fmt.Sprintf("loadtest-%s@example.com", uuid.NewString())
	_, _, err := c.do("POST", "/api/auth/register", map[string]any{
		"username": "loadtest",
		"email":    email,
		"password": "Password123",
		"is_admin": true,
	})
	if err != nil {
		log.Fatalf("register failed: %v", err)
	}

	_, loginEnv, err := c.do("POST", "/api/auth/login", map[string]any{
		"email":    email,
		"password": "Password123",
	})
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	var loginData struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(loginEnv.Data, &loginData); err != nil {
		log.Fatalf("decode login response: %v", err)
	}
	c.token = loginData.Token

	status, catEnv, err := c.do("POST", "/api/sweets/categories", map[string]any{
		"name": "Loadtest " + uuid.NewString()[:8],
	})
	if err != nil || status != http.StatusCreated {
		log.Fatalf("create category failed: status=%d err=%v", status, err)
	}
	var category struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(catEnv.Data, &category); err != nil {
		log.Fatalf("decode category: %v", err)
	}

	status, sweetEnv, err := c.do("POST", "/api/sweets", map[string]any{
		"name":     "Contended Ladoo",
		"category": category.ID,
		"price":    10,
		"quantity": initialStock,
	})
	if err != nil || status != http.StatusCreated {
		log.Fatalf("create sweet failed: status=%d err=%v", status, err)
	}
	var sweet struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(sweetEnv.Data, &sweet); err != nil {
		log.Fatalf("decode sweet: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent purchases
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			status, _, err := c.do("POST", "/api/sweets/"+sweet.ID+"/purchase", map[string]any{
				"quantity": 1,
			})
			if err == nil && status == http.StatusOK {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== LOAD TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("=======================================")

	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d purchases succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	// Verify final quantity through the API
	_, finalEnv, err := c.do("GET", "/api/sweets/search?name=Contended+Ladoo", nil)
	if err != nil {
		log.Fatalf("final lookup failed: %v", err)
	}
	var results []struct {
		ID       string `json:"_id"`
		Quantity int    `json:"quantity"`
	}
	if err := json.Unmarshal(finalEnv.Data, &results); err != nil {
		log.Fatalf("decode final lookup: %v", err)
	}

	finalQuantity := -1
	for _, r := range results {
		if r.ID == sweet.ID {
			finalQuantity = r.Quantity
		}
	}
	fmt.Printf("Final Quantity: %d\n", finalQuantity)

	if finalQuantity == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected quantity 0, got %d\n", finalQuantity)
	}
}
