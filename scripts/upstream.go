// Upstream is a simple test HTTP server used for gateway testing.
// It provides /health, /orders, and a catch-all echo endpoint.
//
// Usage:
//
//	go run upstream.go -port 8081 -name service1
//
// Point a gateway route at it and watch the request log.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// Order represents an order entity with unique identifier.
type Order struct {
	UUID     string `json:"uuid"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// CreateOrderRequest is the request payload for creating an order.
type CreateOrderRequest struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	name := flag.String("name", "service1", "service name reported in responses")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		log.Printf("request: method=%s path=%s from=%s body=%s", r.Method, r.URL.Path, r.RemoteAddr, string(body))

		var req CreateOrderRequest
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		if req.Item == "" {
			req.Item = "widget"
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		order := Order{
			UUID:     uuid.New().String(),
			Item:     req.Item,
			Quantity: req.Quantity,
		}

		resp := map[string]any{"service": *name, "order": order}
		b, _ := json.Marshal(resp)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write(b)
	})

	// health endpoint probed by the gateway's status aggregator
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// echo everything else so prefix rewriting is easy to observe
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("request: method=%s path=%s from=%s", r.Method, r.URL.Path, r.RemoteAddr)
		fmt.Fprintf(w, "%s saw %s %s\n", *name, r.Method, r.URL.Path)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting upstream %s on %s", *name, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
