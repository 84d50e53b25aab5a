// Package seed fills a running catalog with sample products through its HTTP API.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultCount   = 30
	DefaultDelay   = 50 * time.Millisecond
)

type productPayload struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Result summarises a seeding run
type Result struct {
	Attempted int
	Created   int
	Failed    int
}

// Seeder posts Count products one at a time, pausing Delay between requests.
// A failed request is logged and the run continues.
type Seeder struct {
	BaseURL string
	Count   int
	Delay   time.Duration
	Client  *http.Client
	Logger  *zap.Logger

	// Price returns the price for the i-th product. Defaults to a whole
	// number in [10, 1009].
	Price func(i int) int
}

// New returns a Seeder with the default count and delay
func New(baseURL string, logger *zap.Logger) *Seeder {
	return &Seeder{
		BaseURL: baseURL,
		Count:   DefaultCount,
		Delay:   DefaultDelay,
		Client:  &http.Client{Timeout: 10 * time.Second},
		Logger:  logger,
	}
}

func randomPrice(int) int {
	return rand.IntN(1000) + 10
}

// Run seeds products until Count requests were made or ctx is cancelled
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	var res Result

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	price := s.Price
	if price == nil {
		price = randomPrice
	}
	endpoint := strings.TrimRight(s.BaseURL, "/") + "/api/products"

	for i := 1; i <= s.Count; i++ {
		if i > 1 && s.Delay > 0 {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-time.After(s.Delay):
			}
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		res.Attempted++
		p := productPayload{Name: fmt.Sprintf("Product %d", i), Price: price(i)}
		if err := s.create(ctx, client, endpoint, p); err != nil {
			res.Failed++
			logger.Warn("Failed to create product", zap.String("name", p.Name), zap.Error(err))
			continue
		}

		res.Created++
		logger.Info("Created product", zap.String("name", p.Name), zap.Int("price", p.Price))
	}

	return res, nil
}

func (s *Seeder) create(ctx context.Context, client *http.Client, endpoint string, p productPayload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
