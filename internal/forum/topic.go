package forum

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"floorlottery/internal/errorx"
)

var topicPattern = regexp.MustCompile(`/t/topic/(\d+)(?:/\d+)?`)

// ParseTopicURL extracts the topic id from a topic or post URL such as
// https://linux.do/t/topic/12345/67.
func ParseTopicURL(url string) (string, error) {
	match := topicPattern.FindStringSubmatch(url)
	if match == nil {
		return "", errorx.Validation("无法从URL中解析出主题ID")
	}
	return match[1], nil
}

// LoadCookies reads a Cookie header value from path. A missing file yields
// no cookies.
func LoadCookies(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}
