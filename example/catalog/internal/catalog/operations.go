package catalog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"

	"github.com/halcyon-labs/dispatch-go/apiclient"
)

// Product is an item in the catalog
type Product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Order is a placed order as reported by the catalog API
type Order struct {
	ID       string `json:"id"`
	Product  int    `json:"product"`
	Quantity int    `json:"quantity"`
	Status   string `json:"status"`
}

type listProductsRequest struct{}

func (listProductsRequest) Describe() apiclient.Request {
	return apiclient.Request{Endpoint: "/products"}
}

type getProductRequest struct{ id int }

func (r getProductRequest) Describe() apiclient.Request {
	return apiclient.Request{Endpoint: fmt.Sprintf("/products/%d", r.id)}
}

type placeOrderRequest struct {
	product  int
	quantity int
}

func (r placeOrderRequest) Describe() apiclient.Request {
	return apiclient.Request{
		Endpoint: "/orders",
		Method:   http.MethodPost,
		Params:   map[string]any{"product": r.product, "quantity": r.quantity},
	}
}

type searchRequest struct{ query string }

func (r searchRequest) Describe() apiclient.Request {
	return apiclient.Request{Endpoint: "/search?q=" + url.QueryEscape(r.query)}
}

// ListProducts fetches the full catalog via the typed decode path
func (c *Client) ListProducts(ctx context.Context) error {
	products, _, err := apiclient.Decode[[]Product](ctx, c.api, listProductsRequest{})
	if err != nil {
		return err
	}
	log.Printf("📖 Listed %d products via Decode", len(products))
	return nil
}

// GetProduct fetches a single product via the typed decode path
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	product, _, err := apiclient.Decode[Product](ctx, c.api, getProductRequest{id: id})
	if err != nil {
		return nil, err
	}
	log.Printf("📖 Got product via Decode: %s ($%.2f)", product.Name, product.Price)
	return &product, nil
}

// PlaceOrderAsync places an order and logs the outcome from the completion
// callback, demonstrating scheduler-delivered results
func (c *Client) PlaceOrderAsync(ctx context.Context) {
	apiclient.DecodeAsync(ctx, c.api, placeOrderRequest{product: 1, quantity: 2},
		func(res apiclient.Result[Order]) {
			if !res.Ok() {
				log.Printf("Failed to place order: %v", res.Err)
				return
			}
			log.Printf("✅ Order %s %s via DecodeAsync", res.Value.ID, res.Value.Status)
		})
}

// CheckStatus fetches the service status as a generic object
func (c *Client) CheckStatus(ctx context.Context) error {
	status, _, err := c.api.Object(ctx, apiclient.Get("/status"))
	if err != nil {
		return err
	}
	log.Printf("📖 Service status via Object: %v (up %v)", status["status"], status["uptime"])
	return nil
}

// Search queries the catalog and handles both payload shapes the API serves
func (c *Client) Search(ctx context.Context, query string) error {
	payload, _, err := c.api.Payload(ctx, searchRequest{query: query})
	if err != nil {
		return err
	}
	switch payload.Kind() {
	case apiclient.PayloadArray:
		matches, _ := payload.Array()
		log.Printf("📖 Search %q matched %d products via Payload", query, len(matches))
	case apiclient.PayloadObject:
		summary, _ := payload.Object()
		log.Printf("📖 Search %q returned summary via Payload: %v", query, summary)
	}
	return nil
}
