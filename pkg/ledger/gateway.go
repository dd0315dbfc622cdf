package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"blackjack-observer/pkg/table"
)

const defaultTimeout = 30 * time.Second

// Gateway talks HTTP to the wallet/transport sidecar that holds the signing
// key and relays queries and transactions to the chain. It does no retries:
// a failed call is returned to the caller as-is.
type Gateway struct {
	baseURL string
	client  *http.Client

	boundAddress string
}

var _ Client = (*Gateway)(nil)

// NewGateway returns a Gateway for the sidecar at baseURL
func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// ResolveBoundAddress asks the sidecar which address its wallet signs with
// and remembers it. Must be called before polling starts.
func (g *Gateway) ResolveBoundAddress(ctx context.Context) (string, error) {
	var resp struct {
		Address string `json:"address"`
	}

	if err := g.get(ctx, "/wallet/address", &resp); err != nil {
		return "", err
	}

	g.boundAddress = resp.Address
	return resp.Address, nil
}

// BoundAddress returns the resolved signing address, or an empty string if
// the wallet handshake has not completed
func (g *Gateway) BoundAddress() string {
	return g.boundAddress
}

// GetTable returns the current table snapshot
func (g *Gateway) GetTable(ctx context.Context) (*table.Table, error) {
	body, err := g.getRaw(ctx, "/table")
	if err != nil {
		return nil, err
	}

	return table.Decode(body)
}

// GetLastScore returns the most recent round's score report
func (g *Gateway) GetLastScore(ctx context.Context) (*table.ScoreReport, error) {
	body, err := g.getRaw(ctx, "/score")
	if err != nil {
		return nil, err
	}

	return table.DecodeScoreReport(body)
}

// GetUserBalance returns the game contract's betting balance for an address
func (g *Gateway) GetUserBalance(ctx context.Context, address string) (int64, error) {
	return g.getBalance(ctx, "/balance/"+url.PathEscape(address))
}

// GetBankBalance returns the bank contract's balance
func (g *Gateway) GetBankBalance(ctx context.Context) (int64, error) {
	return g.getBalance(ctx, "/bank/balance")
}

// GetWalletBalance returns the chain wallet balance for an address
func (g *Gateway) GetWalletBalance(ctx context.Context, address string) (int64, error) {
	return g.getBalance(ctx, "/wallet/"+url.PathEscape(address)+"/balance")
}

// Sit takes a seat at the table
func (g *Gateway) Sit(ctx context.Context, seat int) error {
	return g.post(ctx, "/tx/sit", map[string]interface{}{"seat": seat})
}

// Bid places the round's bet
func (g *Gateway) Bid(ctx context.Context, seat int, amount int64) error {
	return g.post(ctx, "/tx/bid", map[string]interface{}{
		"seat":   seat,
		"amount": strconv.FormatInt(amount, 10),
	})
}

// Hit requests another card
func (g *Gateway) Hit(ctx context.Context, seat int) error {
	return g.post(ctx, "/tx/hit", map[string]interface{}{"seat": seat})
}

// Hold ends the hand at its current total
func (g *Gateway) Hold(ctx context.Context, seat int) error {
	return g.post(ctx, "/tx/hold", map[string]interface{}{"seat": seat})
}

// Stand leaves the table
func (g *Gateway) Stand(ctx context.Context, seat int) error {
	return g.post(ctx, "/tx/stand", map[string]interface{}{"seat": seat})
}

// Kick removes a stalled player whose grace period has elapsed
func (g *Gateway) Kick(ctx context.Context, seat int, target string) error {
	return g.post(ctx, "/tx/kick", map[string]interface{}{
		"seat":   seat,
		"target": target,
	})
}

func (g *Gateway) getBalance(ctx context.Context, path string) (int64, error) {
	var resp struct {
		Balance string `json:"balance"`
	}

	if err := g.get(ctx, path, &resp); err != nil {
		return 0, err
	}

	balance, err := strconv.ParseInt(resp.Balance, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse balance %q from %s: %w", resp.Balance, path, err)
	}

	return balance, nil
}

func (g *Gateway) get(ctx context.Context, path string, out interface{}) error {
	body, err := g.getRaw(ctx, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("could not decode response from %s: %w", path, err)
	}

	return nil
}

func (g *Gateway) getRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}

	return g.do(req)
}

func (g *Gateway) post(ctx context.Context, path string, payload interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("could not encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = g.do(req)
	return err
}

func (g *Gateway) do(req *http.Request) ([]byte, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ledger gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ledger gateway returned %d for %s: %s", resp.StatusCode, req.URL.Path, string(body))
	}

	return body, nil
}
