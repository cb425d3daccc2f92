package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"floorlottery/internal/models"
	"floorlottery/internal/report"

	"github.com/urfave/cli/v2"
	"golang.org/x/text/width"
)

func (s *srv) draw(ct *cli.Context) error {
	if err := s.load(ct, false); err != nil {
		return err
	}

	var (
		topicURL string
		count    int
		err      error
	)
	if ct.Bool("terminal") {
		topicURL, count, err = promptDraw(os.Stdin, os.Stdout)
		if errors.Is(err, io.EOF) {
			fmt.Println("\n已取消操作")
			return nil
		}
		if err != nil {
			return err
		}
	} else {
		if ct.NArg() < 2 {
			_ = cli.ShowSubcommandHelp(ct)
			return errors.New("缺少必要的参数: topic_url winners_count")
		}
		topicURL = ct.Args().Get(0)
		count, err = strconv.Atoi(ct.Args().Get(1))
		if err != nil || count < 1 {
			return errors.New("中奖人数必须为大于0的整数")
		}
	}

	req := models.DrawRequest{
		TopicURL:     topicURL,
		WinnersCount: count,
		UseBeacon:    ct.Bool("drand"),
		Cookies:      s.cookies(),
	}
	if ct.IsSet("last-floor") {
		lastFloor := ct.Int("last-floor")
		req.LastFloor = &lastFloor
	}

	result, err := s.service.Draw(ct.Context, req)
	if err != nil {
		return err
	}

	if ct.Bool("json") {
		out, err := json.MarshalIndent(report.NewResponse(result), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Print(report.Text(result, time.Local))
	if result.ID != "" {
		fmt.Printf("抽奖记录: %s\n", result.ID)
	}
	return nil
}

// promptDraw asks for the topic URL and winner count until both are valid.
// It returns io.EOF when input ends first.
func promptDraw(in io.Reader, out io.Writer) (string, int, error) {
	divider := strings.Repeat("=", 80)
	fmt.Fprintln(out, divider)
	fmt.Fprintln(out, "LINUX DO 抽奖程序 - 交互模式")
	fmt.Fprintln(out, divider)

	scanner := bufio.NewScanner(in)
	readLine := func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(scanner.Text()), nil
	}

	for {
		topicURL, err := readLine("\n请输入帖子URL: ")
		if err != nil {
			return "", 0, err
		}
		if topicURL == "" {
			fmt.Fprintln(out, "错误: URL不能为空")
			continue
		}

		raw, err := readLine("请输入中奖人数: ")
		if err != nil {
			return "", 0, err
		}
		count, err := strconv.Atoi(width.Narrow.String(raw))
		if err != nil || count < 1 {
			fmt.Fprintln(out, "错误: 中奖人数必须为大于0的整数")
			continue
		}

		return topicURL, count, nil
	}
}
