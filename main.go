// Vector is a hacker news deep dive assistant: it builds AI reports for top
// stories from their article text and comment tree, caches them under
// reports/ and answers follow-up questions about them.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mseshachalam/vector/analyze"
	"github.com/mseshachalam/vector/app"
	"github.com/mseshachalam/vector/article"
	"github.com/mseshachalam/vector/dbp"
	"github.com/mseshachalam/vector/flow"
	"github.com/mseshachalam/vector/hn"
	"github.com/mseshachalam/vector/report"
	"github.com/mseshachalam/vector/stats"
)

func main() {
	conf, err := app.LoadConfig(os.Getenv("APP_CONFIG_PATH"))
	if err != nil {
		log.Println(err)
		return
	}

	// Log to a file; stdout belongs to the prompt.
	if err := os.MkdirAll(filepath.Join(conf.LogsDirectoryPath, "app"), 0o755); err != nil {
		log.Println(err)
		return
	}
	logFile, err := os.OpenFile(filepath.Join(conf.LogsDirectoryPath, "app", "app.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Println(err)
		return
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Println("logging initialized")

	recorder, err := stats.NewCSVRecorder(filepath.Join(conf.LogsDirectoryPath, "stats", "usage_stats.csv"))
	if err != nil {
		fmt.Println(err)
		return
	}

	cache, err := report.NewCache(conf.ReportsDirectoryPath)
	if err != nil {
		fmt.Println(err)
		return
	}

	gen, err := analyze.New(conf)
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()

	if o, ok := gen.(*analyze.Ollama); ok {
		tctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		there, err := o.CheckModel(tctx)
		cancel()
		if err != nil {
			fmt.Printf("warning: cannot reach ollama at %s: %v\n", conf.OllamaHost, err)
		} else if !there {
			fmt.Printf("warning: model %q not found in ollama, run: ollama pull %s\n", conf.OllamaModel, conf.OllamaModel)
		}
	}

	db, err := sql.Open("sqlite3", conf.AppDatabasePath)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer db.Close()
	if err := dbp.SetupTables(db); err != nil {
		fmt.Println(err)
		return
	}

	client := hn.NewClient(nil)
	client.Workers = conf.FetchWorkers
	client.Batch = conf.FetchBatch

	f := &flow.Flow{
		Client:    client,
		Extractor: article.NewExtractor(nil),
		Cache:     cache,
		Generator: gen,
		Recorder:  recorder,
		Storage:   db,
		Conf:      conf,
	}

	repl(ctx, f)
}

func repl(ctx context.Context, f *flow.Flow) {
	fmt.Println("vector: top [page] | open <id> | force <id> | chat <id> <question> | quit")
	sc := bufio.NewScanner(os.Stdin)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "q", "exit":
			return
		case "top":
			page := 1
			if len(fields) > 1 {
				if p, err := strconv.Atoi(fields[1]); err == nil && p > 0 {
					page = p
				}
			}
			stories, err := f.TopStories(ctx, page)
			if err != nil {
				fmt.Println(err)
				continue
			}
			start := (page-1)*f.Conf.PageSize + 1
			for i, s := range stories {
				fmt.Printf("%3d. [%4d] %s (%d comments, id %d)\n", start+i, s.Score, s.Title, s.Descendants, s.ID)
			}
		case "open", "force":
			if len(fields) < 2 {
				fmt.Println("usage:", fields[0], "<id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("not a story id:", fields[1])
				continue
			}
			fmt.Println("working...")
			b, err := f.Acquire(ctx, id, fields[0] == "force")
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println(b.Report)
			fmt.Printf("\n(cached as hn_%d, article: %s, %d comments)\n", b.StoryID, b.Article.Status, len(b.Comments))
		case "chat":
			if len(fields) < 3 {
				fmt.Println("usage: chat <id> <question>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Println("not a story id:", fields[1])
				continue
			}
			answer, err := f.Chat(ctx, id, strings.Join(fields[2:], " "))
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Println(answer)
		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}
