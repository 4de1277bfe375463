// mockupstream emulates the two upstream services the widget submits to:
// the order processor (create order + webhook receiver) and the relay.
// Useful for local end-to-end runs without real backends.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
)

func main() {
	addr := flag.String("addr", ":9090", "Listen address")
	failCreate := flag.Int("fail-create", 0, "Return 500 for the first N create-order requests")
	failRelay := flag.Int("fail-relay", 0, "Return 500 for the first N relay requests")
	rejectRelay := flag.Bool("reject-relay", false, "Answer relay requests with 422 (permanent failure)")
	flag.Parse()

	var createSeen, relaySeen atomic.Int64

	mux := http.NewServeMux()

	mux.HandleFunc("POST /cart_update/{code}", func(w http.ResponseWriter, r *http.Request) {
		n := createSeen.Add(1)
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		log.Printf("create-order #%d code=%s body=%s", n, r.PathValue("code"), body)

		if n <= int64(*failCreate) {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}

		var payload struct {
			CartID string `json:"cartId"`
		}
		_ = json.Unmarshal(body, &payload)
		token := payload.CartID[strings.LastIndex(payload.CartID, "/")+1:]

		writeJSON(w, map[string]string{
			"checkoutUrl": "https://checkout.example.com/c/" + token,
		})
	})

	mux.HandleFunc("POST /relay", func(w http.ResponseWriter, r *http.Request) {
		n := relaySeen.Add(1)
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		log.Printf("relay #%d body=%s", n, body)

		if *rejectRelay {
			http.Error(w, "record rejected", http.StatusUnprocessableEntity)
			return
		}
		if n <= int64(*failRelay) {
			http.Error(w, "upstream unavailable", http.StatusInternalServerError)
			return
		}

		var rec struct {
			OrderID string `json:"order_id"`
		}
		_ = json.Unmarshal(body, &rec)

		writeJSON(w, map[string]string{
			"url": "https://pay.example.com/session/" + rec.OrderID,
		})
	})

	mux.HandleFunc("POST /webhook/{secret}/{code}", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		log.Printf("webhook code=%s secret=%s body=%s", r.PathValue("code"), r.PathValue("secret"), body)
		w.WriteHeader(http.StatusOK)
	})

	fmt.Printf("mock upstream listening on %s\n", *addr)
	fmt.Println("  processor: POST /cart_update/{code}, POST /webhook/{secret}/{code}")
	fmt.Println("  relay:     POST /relay")
	log.Fatal(http.ListenAndServe(*addr, mux))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
