// Package beacon fetches rounds of the drand public randomness beacon.
package beacon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"floorlottery/internal/errorx"
	"floorlottery/internal/models"

	"github.com/google/logger"
	"github.com/tidwall/gjson"
)

// Fetcher returns a published beacon round.
type Fetcher interface {
	FetchRound(ctx context.Context, round int64) (models.BeaconRound, error)
}

// Client fetches rounds of one drand chain over HTTP.
type Client struct {
	server     string
	chainHash  string
	httpClient *http.Client
}

// NewClient creates a drand client for the chain identified by chainHash.
func NewClient(server, chainHash string, timeout time.Duration) *Client {
	return &Client{
		server:     strings.TrimRight(server, "/"),
		chainHash:  chainHash,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// ChainHash identifies the chain this client reads from.
func (c *Client) ChainHash() string {
	return c.chainHash
}

// FetchRound loads GET {server}/{hash}/public/{round}.
func (c *Client) FetchRound(ctx context.Context, round int64) (models.BeaconRound, error) {
	url := fmt.Sprintf("%s/%s/public/%d", c.server, c.chainHash, round)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.BeaconRound{}, errorx.Collaborator(err, "获取云端随机数失败")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.BeaconRound{}, errorx.Collaborator(err, "获取云端随机数失败")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.BeaconRound{}, errorx.Collaborator(err, "获取云端随机数失败")
	}
	if resp.StatusCode != http.StatusOK {
		return models.BeaconRound{}, errorx.Collaborator(
			fmt.Errorf("GET %s: status %d", url, resp.StatusCode), "获取云端随机数失败")
	}

	randomness := gjson.GetBytes(body, "randomness")
	published := gjson.GetBytes(body, "round")
	if randomness.Type != gjson.String || published.Type != gjson.Number {
		return models.BeaconRound{}, errorx.Collaborator(
			fmt.Errorf("unexpected body from %s", url), "云端随机数数据格式不正确")
	}

	logger.Infof("Fetched drand round %d", published.Int())
	return models.BeaconRound{
		Round:      published.Int(),
		Randomness: randomness.String(),
	}, nil
}
