package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/avelichko/docscan/internal/bootstrap"
	"github.com/avelichko/docscan/internal/config"
	"github.com/avelichko/docscan/internal/core/domain"
	"github.com/avelichko/docscan/internal/core/ports"
	"github.com/avelichko/docscan/internal/infrastructure/search/elastic"
	"github.com/avelichko/docscan/internal/observability/logging"
)

const (
	menuSubmit = 1
	menuList   = 2
	menuSearch = 3
	menuExit   = 4

	displayTextLimit = 500
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := logging.NewCLILogger("docscan-cli", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	runMenu(ctx, app)
	fmt.Println("\nExiting. Goodbye!")
}

func runMenu(ctx context.Context, app *bootstrap.App) {
	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for ctx.Err() == nil {
		printMenu()
		line, ok := readLine(in)
		if !ok {
			return
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Println("Invalid input. Please enter a number.")
			continue
		}

		switch choice {
		case menuSubmit:
			submitDocument(ctx, in, app.Submit)
		case menuList:
			listRecords(ctx, app.Lister)
		case menuSearch:
			searchRecords(ctx, in, app.Searcher)
		case menuExit:
			return
		default:
			fmt.Println("Invalid choice. Please select a valid option (1-4).")
		}
	}
}

func printMenu() {
	fmt.Println("\n=================================================")
	fmt.Println("       Document Capture & Keyword Search")
	fmt.Println("=================================================")
	fmt.Println("1. Submit a document (OCR, store, index)")
	fmt.Println("2. List stored records")
	fmt.Println("3. Search records by keyword")
	fmt.Println("4. Exit")
	fmt.Print("Enter your choice: ")
}

func submitDocument(ctx context.Context, in *bufio.Scanner, submitter ports.DocumentSubmitter) {
	fmt.Print("Enter path to image/document (PNG, JPG, PDF, XLSX, TXT): ")
	path, ok := readLine(in)
	if !ok {
		return
	}
	path = strings.TrimSpace(path)
	if path == "" {
		fmt.Println("Path cannot be empty.")
		return
	}

	sub, err := submitter.Submit(ctx, path)
	if err != nil {
		switch {
		case domain.IsKind(err, domain.ErrInvalidInput):
			fmt.Printf("FILE ERROR: %v\n", err)
		case domain.IsKind(err, domain.ErrStoreUnavailable):
			fmt.Printf("STORAGE ERROR: %v\n", err)
		default:
			fmt.Printf("Submission failed: %v\n", err)
		}
		return
	}

	switch sub.Status {
	case domain.StatusNoText:
		fmt.Println("Extraction produced no readable text. Nothing stored.")
	case domain.StatusDuplicate:
		fmt.Println("Duplicate document: a record with this filename already exists. Skipped.")
	case domain.StatusIndexed, domain.StatusIndexDegraded:
		printStoredRecord(sub.Record)
		if sub.Status == domain.StatusIndexDegraded {
			fmt.Println("NOTE: search indexing is degraded; the record is stored and will be indexed later.")
		}
	}
}

func printStoredRecord(rec *domain.Record) {
	fmt.Println("\n--- Extracted Text ---")
	fmt.Println(truncate(rec.Text, displayTextLimit))
	fmt.Printf("Confidence: %.2f%%\n", rec.Confidence)
	fmt.Printf("Stored record ID: %d\n", rec.ID)
	fmt.Println("----------------------")
}

func listRecords(ctx context.Context, lister ports.RecordLister) {
	records, err := lister.ListRecords(ctx)
	if err != nil {
		fmt.Printf("Could not list records: %v\n", err)
		return
	}

	fmt.Println("\n--- Stored Records ---")
	if len(records) == 0 {
		fmt.Println("No records currently stored.")
	}
	for _, rec := range records {
		fmt.Printf("ID: %d | Filename: %s | Confidence: %.2f%% | Uploaded: %s\n",
			rec.ID, rec.Filename, rec.Confidence, rec.UploadedAt.Format(domain.UploadTimeLayout))
	}
	fmt.Println("----------------------")
}

func searchRecords(ctx context.Context, in *bufio.Scanner, searcher ports.KeywordSearcher) {
	fmt.Print("Enter keyword for full-text search: ")
	keyword, ok := readLine(in)
	if !ok {
		return
	}
	if strings.TrimSpace(keyword) == "" {
		fmt.Println("Keyword cannot be empty.")
		return
	}

	result, err := searcher.Search(ctx, keyword)
	if err != nil {
		fmt.Printf("Search failed: %v\n", err)
		return
	}

	fmt.Printf("\n--- Search Results --- (Total Hits: %d)\n", result.Total)
	if result.Total == 0 {
		fmt.Println("No matching records found.")
		return
	}
	for _, hit := range result.Hits {
		fmt.Println("------------------------------------")
		fmt.Printf("Filename: %s\n", hit.Filename)
		fmt.Printf("Score: %.4f\n", hit.Score)
		fmt.Printf("Snippet: %s\n", renderSnippet(hit.Snippet))
	}
	fmt.Println("------------------------------------")
}

// renderSnippet replaces the engine's highlight markers with something
// readable on a terminal.
func renderSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, elastic.PreTag, "**")
	return strings.ReplaceAll(snippet, elastic.PostTag, "**")
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		if err := in.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
			fmt.Printf("input error: %v\n", err)
		}
		return "", false
	}
	return in.Text(), true
}
