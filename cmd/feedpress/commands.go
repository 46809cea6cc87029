package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/FeedPress/internal/model"
	"github.com/TobiSchelling/FeedPress/internal/pipeline"
)

// --- feeds command ---

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "Manage the feed registry",
}

var feedsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		feeds, err := db.ListFeeds(cmd.Context())
		if err != nil {
			return err
		}
		if len(feeds) == 0 {
			fmt.Println("No feeds configured. Add one with: feedpress feeds add <url> [name]")
			return nil
		}

		table := newTable("ID", "Name", "URL", "Last fetched")
		for _, f := range feeds {
			fetched := "never"
			if f.LastFetchedAt != nil {
				fetched = humanize.Time(*f.LastFetchedAt)
			}
			table.Append([]string{f.ID, f.Name, f.URL, fetched})
		}
		table.Render()
		return nil
	},
}

var feedsAddCmd = &cobra.Command{
	Use:   "add [url] [name]",
	Short: "Add a feed",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		name := ""
		if len(args) > 1 {
			name = args[1]
		}

		feed, err := db.AddFeed(cmd.Context(), args[0], name)
		if err != nil {
			return err
		}
		fmt.Printf("Added feed [%s]: %s\n", feed.ID, feed.DisplayName())
		return nil
	},
}

var feedsRemoveCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a feed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		feed, err := db.GetFeed(cmd.Context(), args[0])
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("feed %s not found", args[0])
		}
		if err != nil {
			return err
		}

		if err := db.RemoveFeed(cmd.Context(), feed.ID); err != nil {
			return err
		}
		fmt.Printf("Removed feed [%s]: %s\n", feed.ID, feed.DisplayName())
		return nil
	},
}

var feedsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import the seed feeds from the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		existing, err := db.ListFeeds(cmd.Context())
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(existing))
		for _, f := range existing {
			known[f.URL] = true
		}

		added := 0
		for _, seed := range cfg.Feeds {
			if known[strings.TrimSpace(seed.URL)] {
				continue
			}
			if _, err := db.AddFeed(cmd.Context(), seed.URL, seed.Name); err != nil {
				fmt.Printf("  Skipping %s: %v\n", seed.URL, err)
				continue
			}
			known[seed.URL] = true
			added++
		}
		fmt.Printf("Imported %d feeds (%d already present)\n", added, len(cfg.Feeds)-added)
		return nil
	},
}

func init() {
	feedsCmd.AddCommand(feedsListCmd)
	feedsCmd.AddCommand(feedsAddCmd)
	feedsCmd.AddCommand(feedsRemoveCmd)
	feedsCmd.AddCommand(feedsImportCmd)
}

// --- target command ---

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage the WordPress publish target",
}

var targetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the publish target",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		target, err := db.GetPublishTarget(cmd.Context())
		if err != nil {
			return err
		}
		if target == nil {
			fmt.Println("WordPress is not configured. Set it with: feedpress target set <siteUrl> <username> <applicationPassword>")
			return nil
		}
		fmt.Printf("Site URL: %s\n", target.SiteURL)
		fmt.Printf("Username: %s\n", target.Username)
		fmt.Println("Application Password: (set)")
		return nil
	},
}

var targetSetCmd = &cobra.Command{
	Use:   "set [siteUrl] [username] [applicationPassword]",
	Short: "Replace the publish target",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := model.NewPublishTarget(args[0], args[1], args[2])
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SavePublishTarget(cmd.Context(), target); err != nil {
			return err
		}
		fmt.Println("WordPress configuration saved.")
		return nil
	},
}

func init() {
	targetCmd.AddCommand(targetShowCmd)
	targetCmd.AddCommand(targetSetCmd)
}

// --- log command ---

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the processing log, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.ListLog(cmd.Context(), logLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("The processing log is empty.")
			return nil
		}
		printEntries(entries)
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "Number of entries to show")
}

// --- output helpers ---

func newTable(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	return table
}

func printEntries(entries []model.LogEntry) {
	if len(entries) == 0 {
		return
	}
	table := newTable("When", "Status", "Article", "Details")
	for _, e := range entries {
		table.Append([]string{
			humanize.Time(e.Timestamp),
			string(e.Status),
			truncate(e.ArticleTitle, 50),
			truncate(entryDetails(e), 70),
		})
	}
	table.Render()
}

func entryDetails(e model.LogEntry) string {
	switch {
	case e.PublishedURL != "":
		return e.PublishedURL
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return strings.ReplaceAll(e.Summary, "\n", " ")
	}
}

func printPreview(p *pipeline.PreviewResult) {
	table := newTable("Feed", "Items", "New", "Error")
	for _, f := range p.Feeds {
		errText := ""
		if f.Err != nil {
			errText = truncate(f.Err.Error(), 60)
		}
		table.Append([]string{f.Name, fmt.Sprint(f.Items), fmt.Sprint(f.New), errText})
	}
	table.Render()

	fmt.Printf("\n[dry-run] %d new articles would be processed.\n", p.NewArticles)
	if !p.HasPublishTarget {
		fmt.Println("[dry-run] WordPress is not configured; summaries would not be posted.")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
