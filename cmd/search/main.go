// search 是站内搜索框的命令行版本，连接运行中的服务器的 /api/search。
//
// 每行输入作为一次搜索框输入；输入 ":N" 打开第 N 条结果，":clear" 清空历史，":q" 退出。
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/user/cinema/internal/localstore"
	"github.com/user/cinema/internal/logging"
	"github.com/user/cinema/internal/searchbox"
	"github.com/user/cinema/internal/utils"
	"go.uber.org/zap"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "服务器地址")
	delay := flag.Duration("delay", searchbox.DefaultDelay, "防抖延迟")
	level := flag.String("log", "warn", "日志级别")
	flag.Parse()

	logger, err := logging.New(*level)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	history := localstore.NewHistory(localstore.NewMemoryStorage())
	ctrl := searchbox.NewController(searchbox.Options{
		Searcher: searchbox.NewAPIClient(*server, utils.NewHTTPClient(10*time.Second)),
		History:  history,
		Delay:    *delay,
		Logger:   logger,
		Navigate: func(path string) {
			fmt.Printf("→ %s%s\n", strings.TrimRight(*server, "/"), path)
		},
	})

	printSnapshot(ctrl.Snapshot())
	scanner := bufio.NewScanner(os.Stdin)
	for fmt.Print("> "); scanner.Scan(); fmt.Print("> ") {
		line := scanner.Text()
		switch {
		case line == ":q":
			return
		case line == ":clear":
			if err := history.Clear(); err != nil {
				logger.Warn("清空历史失败", zap.Error(err))
			}
			ctrl.Input("")
		case strings.HasPrefix(line, ":"):
			n, err := strconv.Atoi(line[1:])
			results := ctrl.Snapshot().Results
			if err != nil || n < 1 || n > len(results) {
				fmt.Println("無効な番号です")
				continue
			}
			ctrl.Select(results[n-1])
		default:
			ctrl.Input(line)
			waitSettled(ctrl, *delay+15*time.Second)
		}
		printSnapshot(ctrl.Snapshot())
	}
}

// waitSettled 轮询直到本次搜索结束或超时
func waitSettled(ctrl *searchbox.Controller, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		switch ctrl.Snapshot().State {
		case searchbox.Settled, searchbox.Idle:
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func printSnapshot(s searchbox.Snapshot) {
	if s.State == searchbox.Idle {
		if len(s.History) > 0 {
			fmt.Println("最近の検索:", strings.Join(s.History, " / "))
		}
		fmt.Println("人気の検索:", strings.Join(s.PopularTerms, " / "))
		return
	}
	if len(s.Results) == 0 {
		fmt.Printf("「%s」に一致する作品はありません\n", s.Query)
		return
	}
	for i, it := range s.Results {
		year := it.Year()
		if year == "" {
			year = "----"
		}
		fmt.Printf("%2d. %s (%s, %s)\n", i+1, it.DisplayTitle(), year, it.MediaType)
	}
}
