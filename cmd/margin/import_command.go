package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/japaniel/margin/pkg/config"
	"github.com/japaniel/margin/pkg/ingest"
)

func newImportCommand(cctx *commandContext) *cobra.Command {
	var (
		urlFlag    string
		fileFlag   string
		titleFlag  string
		authorFlag string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a document into the reading corpus",
		Long:  "Import a document from a local text file or a web article URL.\nWeb pages are reduced to their readable article text before tokenization.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (urlFlag == "") == (fileFlag == "") {
				return fmt.Errorf("exactly one of --url or --file is required")
			}
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			db, err := cctx.openDB()
			if err != nil {
				return err
			}

			raw := ingest.RawDocument{
				ID:       uuid.NewString(),
				Language: cfg.Language,
			}
			if urlFlag != "" {
				article, err := fetchArticle(cmd, urlFlag, cfg)
				if err != nil {
					return err
				}
				raw.Title = article.Title
				raw.Author = article.Byline
				raw.SourceURL = urlFlag
				raw.Content = article.TextContent
			} else {
				data, err := os.ReadFile(fileFlag)
				if err != nil {
					return fmt.Errorf("read %s: %w", fileFlag, err)
				}
				raw.Title = strings.TrimSuffix(filepath.Base(fileFlag), filepath.Ext(fileFlag))
				raw.Content = string(data)
			}
			if titleFlag != "" {
				raw.Title = titleFlag
			}
			if authorFlag != "" {
				raw.Author = authorFlag
			}
			if strings.TrimSpace(raw.Content) == "" {
				return fmt.Errorf("no text content to import")
			}

			ig := ingest.NewIngester(db)
			ig.Workers = cfg.Import.Workers
			ig.BatchSize = cfg.Import.BatchSize
			tokens, err := ig.Ingest(cmd.Context(), []ingest.RawDocument{raw})
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %q: %d tokens (document %s)\n", raw.Title, tokens, raw.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&urlFlag, "url", "u", "", "Web article URL to import")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Local text file to import")
	cmd.Flags().StringVar(&titleFlag, "title", "", "Override the document title")
	cmd.Flags().StringVar(&authorFlag, "author", "", "Override the document author")

	return cmd
}

// fetchArticle downloads the page with browser-looking headers and runs
// readability extraction. Some hosts return 403 to obvious non-browser
// user agents.
func fetchArticle(cmd *cobra.Command, rawURL string, cfg config.Config) (readability.Article, error) {
	var article readability.Article

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return article, fmt.Errorf("parse url: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.ImportFetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return article, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return article, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return article, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	limit := cfg.Import.MaxBodyBytes
	if resp.ContentLength > limit {
		return article, fmt.Errorf("response of %d bytes exceeds limit of %d", resp.ContentLength, limit)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return article, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) >= limit {
		return article, fmt.Errorf("response exceeds limit of %d bytes", limit)
	}

	article, err = readability.FromReader(bytes.NewReader(body), parsedURL)
	if err != nil {
		return article, fmt.Errorf("extract article: %w", err)
	}
	return article, nil
}
