// Package forum fetches thread facts and eligible floors from the forum API.
package forum

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

type Options struct {
	BaseURL           string
	ConnectURL        string
	Timeout           time.Duration
	AllowedCategories []int
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client talks to the forum (topic JSON) and its connect service (eligible
// floors).
type Client struct {
	baseURL           string
	connectURL        string
	allowedCategories []int
	httpClient        *http.Client
}

// NewClient creates a new forum Client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:           strings.TrimRight(opts.BaseURL, "/"),
		connectURL:        strings.TrimRight(opts.ConnectURL, "/"),
		allowedCategories: opts.AllowedCategories,
		httpClient:        httpClient,
	}
}

// TopicURL returns the canonical URL of a topic.
func (c *Client) TopicURL(topicID string) string {
	return fmt.Sprintf("%s/t/topic/%s", c.baseURL, topicID)
}

// PostURL returns the canonical URL of one floor of a topic.
func (c *Client) PostURL(topicID string, floor int) string {
	return fmt.Sprintf("%s/t/topic/%s/%d", c.baseURL, topicID, floor)
}

// FetchThreadFacts loads the topic and checks that it may be drawn from: it
// must be closed or archived, and in an allowed category when an allow-list
// is configured.
func (c *Client) FetchThreadFacts(ctx context.Context, topicID, cookies string) (models.ThreadFacts, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/t/%s.json", c.baseURL, topicID), cookies)
	if err != nil {
		return models.ThreadFacts{}, errorx.Collaborator(err,
			"获取主题信息失败（如果帖子需要登录，请确保cookies有效）")
	}
	return parseThreadFacts(topicID, body, c.allowedCategories)
}

func parseThreadFacts(topicID string, body []byte, allowed []int) (models.ThreadFacts, error) {
	if !gjson.ValidBytes(body) {
		return models.ThreadFacts{}, errorx.Collaborator(nil, "返回的JSON数据格式不正确")
	}

	facts := models.ThreadFacts{
		TopicID:    topicID,
		Closed:     gjson.GetBytes(body, "closed").Bool(),
		Archived:   gjson.GetBytes(body, "archived").Bool(),
		CategoryID: int(gjson.GetBytes(body, "category_id").Int()),
	}
	if !facts.Closed && !facts.Archived {
		return facts, errorx.Validation("帖子尚未关闭或存档，不能进行抽奖")
	}
	if len(allowed) > 0 && !containsInt(allowed, facts.CategoryID) {
		return facts, errorx.Validation("帖子不在指定分类下，不能进行抽奖")
	}

	fields, err := requireFields(body,
		field{"title", gjson.String},
		field{"created_at", gjson.String},
		field{"highest_post_number", gjson.Number},
		field{"details.created_by.username", gjson.String},
	)
	if err != nil {
		return facts, err
	}

	facts.Title = fields[0].String()
	facts.CreatedAt = fields[1].String()
	facts.HighestPostNumber = int(fields[2].Int())
	facts.CreatedBy = fields[3].String()
	if last := gjson.GetBytes(body, "last_posted_at"); last.Type == gjson.String {
		facts.LastPostedAt = last.String()
	}
	return facts, nil
}

// FetchEligibleFloors loads the eligible floors of a topic. When cutoff is
// set only floors numbered at or below it are kept.
func (c *Client) FetchEligibleFloors(ctx context.Context, topicID, cookies string, cutoff *int) (models.EligibleFloors, error) {
	url := fmt.Sprintf("%s/api/topic/%s/valid_post_number", c.connectURL, topicID)
	body, err := c.get(ctx, url, cookies)
	if err != nil {
		return models.EligibleFloors{}, errorx.Collaborator(err, "获取有效楼层失败")
	}

	floors, err := parseEligibleFloors(body)
	if err != nil {
		return floors, err
	}
	if cutoff != nil {
		floors = floors.Truncate(*cutoff)
		logger.Infof("Topic %s truncated at floor %d: %d eligible floors left", topicID, *cutoff, floors.Len())
	}
	return floors, nil
}

func parseEligibleFloors(body []byte) (models.EligibleFloors, error) {
	badFormat := errorx.Collaborator(nil, "返回的有效楼层数据格式不正确")
	if !gjson.ValidBytes(body) {
		return models.EligibleFloors{}, badFormat
	}

	rows := gjson.GetBytes(body, "rows")
	ids := gjson.GetBytes(body, "ids")
	created := gjson.GetBytes(body, "created")
	for _, r := range []gjson.Result{rows, ids, created} {
		if r.Exists() && r.Type != gjson.Null && !r.IsArray() {
			return models.EligibleFloors{}, badFormat
		}
	}

	var floors models.EligibleFloors
	for _, r := range rows.Array() {
		if r.Type != gjson.Number || r.Num != float64(r.Int()) {
			return models.EligibleFloors{}, badFormat
		}
		floors.Numbers = append(floors.Numbers, int(r.Int()))
	}
	for _, r := range ids.Array() {
		if r.Type != gjson.Number || r.Num != float64(r.Int()) {
			return models.EligibleFloors{}, badFormat
		}
		floors.IDs = append(floors.IDs, r.Int())
	}
	for _, r := range created.Array() {
		if r.Type != gjson.String {
			return models.EligibleFloors{}, badFormat
		}
		floors.CreatedAt = append(floors.CreatedAt, r.String())
	}

	if len(floors.Numbers) == 0 || len(floors.IDs) == 0 || len(floors.CreatedAt) == 0 {
		return floors, errorx.Validation("该帖不符合抽奖条件（如：版块错误、帖子未关闭等）")
	}
	if err := floors.Validate(); err != nil {
		return floors, err
	}
	return floors, nil
}

func (c *Client) get(ctx context.Context, url, cookies string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return body, nil
}

type field struct {
	path string
	typ  gjson.Type
}

// requireFields returns the values at the given paths, failing when one is
// missing, null or of the wrong JSON type.
func requireFields(body []byte, fields ...field) ([]gjson.Result, error) {
	results := make([]gjson.Result, len(fields))
	for i, f := range fields {
		r := gjson.GetBytes(body, f.path)
		if !r.Exists() || r.Type != f.typ {
			return nil, errorx.Collaborator(fmt.Errorf("field %s missing or not %s", f.path, f.typ),
				"返回的JSON数据格式不正确")
		}
		results[i] = r
	}
	return results, nil
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
