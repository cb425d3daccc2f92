package report

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"floorlottery/internal/lottery"
	"floorlottery/internal/models"
)

// Version is printed in report headings and system info.
var Version = "0.0.5"

const (
	lineWidth    = 80
	headingWidth = 78
	timeLayout   = "2006-01-02 15:04:05"
)

// Text renders a draw result the way it is announced on the forum.
// Timestamps are shown in loc.
func Text(result *models.DrawResult, loc *time.Location) string {
	var b strings.Builder

	divider := strings.Repeat("=", lineWidth) + "\n"
	rule := strings.Repeat("-", lineWidth) + "\n"

	b.WriteString(divider)
	b.WriteString(center("LINUX DO 抽奖结果 - "+Version, headingWidth) + "\n")
	b.WriteString(divider)

	fmt.Fprintf(&b, "帖子链接: %s\n", result.ThreadURL)
	fmt.Fprintf(&b, "帖子标题: %s\n", result.Thread.Title)
	fmt.Fprintf(&b, "发帖时间: %s\n", localTime(result.Thread.CreatedAt, loc))
	b.WriteString(rule)

	floors := result.ValidFloors()
	fmt.Fprintf(&b, "抽奖时间: %s\n", result.DrawnAt.In(loc).Format(timeLayout))
	if len(floors) > 0 {
		fmt.Fprintf(&b, "参与楼层: %d - %d 楼\n", floors[0], floors[len(floors)-1])
	}
	fmt.Fprintf(&b, "有效楼层: %d 楼\n", len(floors))
	fmt.Fprintf(&b, "中奖数量: %d 个\n", result.WinnersCount)
	fmt.Fprintf(&b, "最终种子: %s\n", result.FinalSeed)
	if result.Beacon != nil {
		fmt.Fprintf(&b, "云端随机: %s (第 %d 轮)\n", result.Beacon.Randomness, result.Beacon.Round)
	}

	b.WriteString(rule)
	b.WriteString("恭喜以下楼层中奖:\n")
	b.WriteString(rule)
	for i, floor := range result.WinningFloors {
		url := ""
		if i < len(result.WinningURLs) {
			url = result.WinningURLs[i]
		}
		fmt.Fprintf(&b, "[%s] %4d 楼，楼层链接: %s\n", center(fmt.Sprint(i+1), 6), floor, url)
	}

	b.WriteString(divider)
	b.WriteString("注: 楼层顺序即为抽奖顺序\n")
	b.WriteString(divider)
	return b.String()
}

// localTime formats a forum timestamp in loc, falling back to the raw value.
func localTime(ts string, loc *time.Location) string {
	t, err := lottery.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.In(loc).Format(timeLayout)
}

// center pads s with spaces to n characters. Extra padding goes to the
// right.
func center(s string, n int) string {
	pad := n - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
