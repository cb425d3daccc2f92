package handlers

import (
	"context"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"floorlottery/internal/errorx"
	"floorlottery/internal/models"
	"floorlottery/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/tidwall/gjson"
	"golang.org/x/text/width"
)

const defaultHistoryLimit = 20

// Drawer is the lottery service as seen by the HTTP layer.
type Drawer interface {
	Draw(ctx context.Context, req models.DrawRequest) (*models.DrawResult, error)
	Verify(ctx context.Context, id string) (*models.VerifyResult, error)
	History(ctx context.Context, limit int) ([]models.DrawRecord, error)
	Record(ctx context.Context, id string) (*models.DrawRecord, error)
}

// HTTPHandler holds the dependencies for the HTTP handlers, like the lottery service.
type HTTPHandler struct {
	service Drawer
	loc     *time.Location
}

// NewHTTPHandler creates a new HTTPHandler. Report timestamps are shown in loc.
func NewHTTPHandler(service Drawer, loc *time.Location) *HTTPHandler {
	if loc == nil {
		loc = time.Local
	}
	return &HTTPHandler{
		service: service,
		loc:     loc,
	}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("", h.PerformDraw)
	api.POST("/draw", h.PerformTextDraw)
	api.GET("/system-info", h.ShowSystemInfo)
	api.GET("/draws", h.ListDraws)
	api.GET("/draws/:id", h.GetDraw)
	api.GET("/draws/:id/verify", h.VerifyDraw)
}

// PerformDraw handles a draw submitted as JSON or multipart form data and
// returns the structured result.
func (h *HTTPHandler) PerformDraw(c *gin.Context) {
	values, err := readFields(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	req, err := values.drawRequest()
	if err != nil {
		h.fail(c, err)
		return
	}
	req.UseBeacon = parseFlag(values["use_drand"])
	req.Cookies = values["cookies"]

	logger.Infof("Processing lottery for topic URL: %s with %d winners", req.TopicURL, req.WinnersCount)
	result, err := h.service.Draw(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, report.NewResponse(result))
}

// PerformTextDraw handles a JSON draw request and returns the rendered
// announcement text.
func (h *HTTPHandler) PerformTextDraw(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || !gjson.ValidBytes(body) {
		h.fail(c, errorx.Validation("请求体必须为JSON"))
		return
	}

	req, err := jsonFields(body).drawRequest()
	if err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.Draw(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      result.ID,
		"result":  report.Text(result, h.loc),
	})
}

// ShowSystemInfo reports the program version and runtime.
func (h *HTTPHandler) ShowSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"lottery_version": report.Version,
		"os_info":         runtime.GOOS + " " + runtime.GOARCH,
		"go_version":      runtime.Version(),
	})
}

// ListDraws returns the most recent recorded draws.
func (h *HTTPHandler) ListDraws(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(c, errorx.Validation("limit必须为大于0的整数"))
			return
		}
		limit = n
	}

	records, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draws": records})
}

// GetDraw returns one recorded draw.
func (h *HTTPHandler) GetDraw(c *gin.Context) {
	record, err := h.service.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// VerifyDraw recomputes a recorded draw.
func (h *HTTPHandler) VerifyDraw(c *gin.Context) {
	result, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status := errorx.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("Server error: %v", err)
	} else {
		logger.Infof("Lottery error: %v", err)
	}
	c.JSON(status, gin.H{"error": errorx.Message(err)})
}

// formValues holds the submitted draw parameters as raw strings.
type formValues map[string]string

var drawFields = []string{"topic_url", "winners_count", "last_floor", "use_drand", "cookies"}

func readFields(c *gin.Context) (formValues, error) {
	contentType := c.ContentType()
	switch {
	case contentType == gin.MIMEJSON:
		body, err := io.ReadAll(c.Request.Body)
		if err != nil || !gjson.ValidBytes(body) {
			return nil, errorx.Validation("请求体必须为JSON")
		}
		return jsonFields(body), nil
	case strings.HasPrefix(contentType, gin.MIMEMultipartPOSTForm), contentType == gin.MIMEPOSTForm:
		f := formValues{}
		for _, name := range drawFields {
			f[name] = c.PostForm(name)
		}
		return f, nil
	default:
		return nil, errorx.Validation("Unsupported Content-Type")
	}
}

func jsonFields(body []byte) formValues {
	f := formValues{}
	for i, v := range gjson.GetManyBytes(body, drawFields...) {
		if v.Exists() && v.Type != gjson.Null {
			f[drawFields[i]] = v.String()
		}
	}
	return f
}

func (f formValues) drawRequest() (models.DrawRequest, error) {
	var req models.DrawRequest

	req.TopicURL = strings.TrimSpace(f["topic_url"])
	if req.TopicURL == "" {
		return req, errorx.Validation("缺少必要的参数: topic_url")
	}

	raw := numeric(f["winners_count"])
	if raw == "" {
		return req, errorx.Validation("缺少必要的参数: winners_count")
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return req, errorx.Validation("中奖人数必须为大于0的整数")
	}
	req.WinnersCount = count

	if raw := numeric(f["last_floor"]); raw != "" {
		lastFloor, err := strconv.Atoi(raw)
		if err != nil {
			return req, errorx.Validation("截止楼层必须为大于0的整数")
		}
		req.LastFloor = &lastFloor
	}
	return req, nil
}

// numeric folds full-width digits, as typed with CJK input methods, to ASCII.
func numeric(s string) string {
	return strings.TrimSpace(width.Narrow.String(s))
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
