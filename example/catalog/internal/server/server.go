package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// product is an item served by the catalog API
type product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

var products = []product{
	{ID: 1, Name: "Widget", Price: 9.99},
	{ID: 2, Name: "Gadget", Price: 19.99},
	{ID: 3, Name: "Sprocket", Price: 4.49},
}

var started = time.Now()

// New builds the local catalog API the example client dispatches against
func New(addr string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/products", listProducts)
	r.Get("/products/{id}", getProduct)
	r.Post("/orders", createOrder)
	r.Get("/status", getStatus)
	r.Get("/search", search)

	return &http.Server{Addr: addr, Handler: r}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, products)
}

func getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product id"})
		return
	}
	for _, p := range products {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
}

func createOrder(w http.ResponseWriter, r *http.Request) {
	var order struct {
		Product  int `json:"product"`
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order body"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       uuid.New().String(),
		"product":  order.Product,
		"quantity": order.Quantity,
		"status":   "accepted",
	})
}

func getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(started).Round(time.Second).String(),
	})
}

// search responds with an array of matches when a query is given and a
// summary object otherwise, so both payload shapes show up in the demo.
func search(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusOK, map[string]any{"total": len(products)})
		return
	}
	matches := []product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) {
			matches = append(matches, p)
		}
	}
	writeJSON(w, http.StatusOK, matches)
}
