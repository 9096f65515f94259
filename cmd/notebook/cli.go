package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/swapavan11/apricity-notebook/internal/config"
	"github.com/swapavan11/apricity-notebook/internal/errors"
	"github.com/swapavan11/apricity-notebook/internal/ink"
	"github.com/swapavan11/apricity-notebook/internal/ops"
	"github.com/swapavan11/apricity-notebook/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "notebook",
		Usage:   "Canvas + rich text study notebook",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(db),
			importCmd(db),
			listCmd(db),
			fetchCmd(db),
			saveCmd(db),
			renameCmd(db),
			deleteCmd(db),
			latestCmd(db),
			exportCmd(db, cfg, baseDir),
			purgeCmd(db),
			serveCmd(db, cfg),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// createCmd creates the create command.
func createCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Create a new note",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Usage: "Source PDF document ID to associate"},
		},
		Action: func(c *cli.Context) error {
			input := ops.CreateInput{
				Title: c.Args().First(),
			}
			if doc := c.String("document"); doc != "" {
				input.DocumentID = &doc
			}

			output, err := ops.Create(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Create a note from a markdown file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Markdown file path"},
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Note title (defaults to the file name)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ImportMarkdownInput{
				Path:  c.String("path"),
				Title: c.String("title"),
			}

			output, err := ops.ImportMarkdown(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List notes, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted notes"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ListInput{
				Limit:          c.Int("limit"),
				Offset:         c.Int("offset"),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			output, err := ops.List(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// fetchCmd creates the fetch command.
func fetchCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Fetch a note by ID",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted notes"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{
				ID:             c.Args().First(),
				IncludeDeleted: c.Bool("include-deleted"),
			}

			output, err := ops.Fetch(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Save note fields (reads content markup from stdin when piped)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "strokes", Usage: "Path to a strokes JSON file"},
			&cli.StringFlag{Name: "document", Aliases: []string{"d"}, Usage: "Source PDF document ID"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SaveInput{
				ID: c.Args().First(),
			}

			// Read content markup from stdin if piped
			if stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				input.Content = &text
			}

			if title := c.String("title"); title != "" {
				input.Title = &title
			}
			if doc := c.String("document"); doc != "" {
				input.DocumentID = &doc
			}
			if path := c.String("strokes"); path != "" {
				strokes, err := readStrokesFile(path)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Strokes = &strokes
			}

			output, err := ops.Save(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// renameCmd creates the rename command.
func renameCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rename",
		Usage:     "Rename a note",
		ArgsUsage: "<id> <title>",
		Action: func(c *cli.Context) error {
			input := ops.RenameInput{
				ID:    c.Args().Get(0),
				Title: c.Args().Get(1),
			}

			output, err := ops.Rename(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Soft-delete a note",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			input := ops.DeleteInput{
				ID: c.Args().First(),
			}

			output, err := ops.Delete(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// latestCmd creates the latest command.
func latestCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "latest",
		Usage: "Get the most recently updated note",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-content", Usage: "Include content markup in output"},
		},
		Action: func(c *cli.Context) error {
			input := ops.LatestInput{
				IncludeContent: c.Bool("include-content"),
			}

			output, err := ops.Latest(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a note to a multi-page PDF",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file path (default: <base>/exports/<id>-<timestamp>.pdf)"},
		},
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			path := c.String("path")
			if path == "" {
				path = ops.DefaultExportPath(baseDir, id, time.Now())
			}

			input := ops.ExportPDFInput{
				ID:   id,
				Path: path,
			}

			output, err := ops.ExportPDF(context.Background(), db, cfg, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete soft-deleted notes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.Purge(db, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8787, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(db, cfg, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if nbErr, ok := err.(*errors.NotebookError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", nbErr.Code, nbErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readStrokesFile loads a strokes JSON array from disk.
func readStrokesFile(path string) ([]ink.Stroke, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read strokes file: %w", err)
	}
	var strokes []ink.Stroke
	if err := json.Unmarshal(data, &strokes); err != nil {
		return nil, fmt.Errorf("invalid strokes file: %w", err)
	}
	return strokes, nil
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
