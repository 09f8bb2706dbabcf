package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	docID := fmt.Sprintf("smoke-%d", time.Now().Unix())

	fmt.Println("1. Processing Document...")
	payload := map[string]interface{}{
		"id":      docID,
		"context": "FOIA response letter",
		"text":    "John Smith, Deputy Director of Acme Corp, approved the contract on January 15, 2024.\n\nPortions withheld under (b)(6) and (b)(7)(C).",
	}
	if !sendRequest("POST", "/documents", payload) {
		fmt.Println("FAILED: Process document")
		os.Exit(1)
	}
	fmt.Println("PASSED: Process document")

	fmt.Println("2. Fetching Document Record...")
	if !sendRequest("GET", "/documents/"+docID, nil) {
		fmt.Println("FAILED: Get document")
		os.Exit(1)
	}
	fmt.Println("PASSED: Get document")

	fmt.Println("3. Exporting Graph...")
	if !sendRequest("GET", "/graph", nil) {
		fmt.Println("FAILED: Export graph")
		os.Exit(1)
	}
	fmt.Println("PASSED: Export graph")

	fmt.Println("4. Scanning Redactions...")
	if !sendRequest("POST", "/redactions", map[string]string{"text": "(b)(5) deliberative; (b)(7)(E) techniques"}) {
		fmt.Println("FAILED: Scan redactions")
		os.Exit(1)
	}
	fmt.Println("PASSED: Scan redactions")
}

func sendRequest(method, endpoint string, payload interface{}) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
