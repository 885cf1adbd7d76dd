// Package main implements a standalone smoke script that drives a running
// draft order service through a full draft lifecycle: fetch the catalog,
// build a draft, edit it, and optionally submit it. Useful after deploys
// and for local stack verification.
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
	"time"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

type client struct {
	base   string
	userID string
	http   *http.Client
}

func (c *client) do(method, path string, body any) (int, map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("non-JSON response: %s", string(raw))
		}
	}
	return resp.StatusCode, decoded, nil
}

func firstProductID(data map[string]any) string {
	inner, _ := data["data"].(map[string]any)
	products, _ := inner["products"].([]any)
	if len(products) == 0 {
		return ""
	}
	p, _ := products[0].(map[string]any)
	id, _ := p["product_id"].(string)
	return id
}

func firstLineID(data map[string]any) string {
	inner, _ := data["data"].(map[string]any)
	lines, _ := inner["lines"].([]any)
	if len(lines) == 0 {
		return ""
	}
	l, _ := lines[0].(map[string]any)
	id, _ := l["line_id"].(string)
	return id
}

func totalDisplay(data map[string]any) string {
	inner, _ := data["data"].(map[string]any)
	t, _ := inner["total_display"].(string)
	return t
}

// --------------------------------------------------------------------------
// Smoke flow
// --------------------------------------------------------------------------

func main() {
	submit := flag.Bool("submit", false, "also submit the draft (creates a real order downstream)")
	flag.Parse()

	c := &client{
		base:   getEnv("DRAFT_SERVICE_URL", "http://localhost:8004"),
		userID: fmt.Sprintf("smoke-%d", time.Now().UnixNano()),
		http:   &http.Client{Timeout: 10 * time.Second},
	}

	log.Printf("smoke test against %s as user %s", c.base, c.userID)

	// Health.
	status, _, err := c.do(http.MethodGet, "/health/ready", nil)
	if err != nil || status != http.StatusOK {
		log.Fatalf("readiness check failed: status=%d err=%v", status, err)
	}
	log.Printf("service ready")

	// Catalog.
	status, data, err := c.do(http.MethodGet, "/api/v1/catalog", nil)
	if err != nil || status != http.StatusOK {
		log.Fatalf("catalog fetch failed: status=%d err=%v", status, err)
	}
	productID := firstProductID(data)
	if productID == "" {
		log.Fatalf("catalog is empty; seed products first")
	}
	log.Printf("using product %s", productID)

	// Add a line.
	status, data, err = c.do(http.MethodPost, "/api/v1/draft/lines", map[string]any{
		"product_id": productID,
		"quantity":   2,
	})
	if err != nil || status != http.StatusCreated {
		log.Fatalf("add line failed: status=%d err=%v body=%v", status, err, data)
	}
	lineID := firstLineID(data)
	log.Printf("added line %s, draft total %s", lineID, totalDisplay(data))

	// Bump the quantity.
	status, data, err = c.do(http.MethodPut, "/api/v1/draft/lines/"+lineID+"/quantity", map[string]any{
		"quantity": 3,
	})
	if err != nil || status != http.StatusOK {
		log.Fatalf("set quantity failed: status=%d err=%v body=%v", status, err, data)
	}
	log.Printf("quantity set to 3, draft total %s", totalDisplay(data))

	if *submit {
		status, data, err = c.do(http.MethodPost, "/api/v1/draft/submit", nil)
		if err != nil || status != http.StatusCreated {
			log.Fatalf("submit failed: status=%d err=%v body=%v", status, err, data)
		}
		inner, _ := data["data"].(map[string]any)
		log.Printf("draft submitted, order_id=%v", inner["order_id"])
	} else {
		// Leave nothing behind.
		status, _, err = c.do(http.MethodDelete, "/api/v1/draft", nil)
		if err != nil || status != http.StatusOK {
			log.Fatalf("discard failed: status=%d err=%v", status, err)
		}
		log.Printf("draft discarded")
	}

	log.Printf("smoke test passed")
}
