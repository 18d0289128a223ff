// Package cli wires the annotation core to a non-interactive command
// surface: summarizing a diff, exporting an annotated review, and listing
// export history.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bkyoung/diffnote/internal/adapter/output/json"
	"github.com/bkyoung/diffnote/internal/adapter/output/markdown"
	"github.com/bkyoung/diffnote/internal/adapter/store/sqlite"
	"github.com/bkyoung/diffnote/internal/annotation"
	"github.com/bkyoung/diffnote/internal/domain"
	"github.com/bkyoung/diffnote/internal/usecase/session"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// DiffSource provides repository metadata and diff text.
type DiffSource interface {
	Metadata(ctx context.Context) (branch, revision string)
	WorkingTreeDiff(ctx context.Context, baseRef string) (string, error)
}

// History records and lists past exports; nil disables the feature.
type History interface {
	RecordExport(ctx context.Context, rec sqlite.ExportRecord) error
	ListExports(ctx context.Context, limit int) ([]sqlite.ExportRecord, error)
}

// Arguments encapsulates IO streams injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
	InReader  io.Reader
}

// Limits caps the diff accepted from the user before parsing.
type Limits struct {
	MaxFiles int
	MaxLines int
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Source         DiffSource
	Markdown       *markdown.Writer
	JSON           *json.Writer
	History        History
	Logger         session.Logger
	Args           Arguments
	Limits         Limits
	MaxAnnotations int
	OutputDir      string
	DefaultFormat  string
	Version        string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "diffnote",
		Short: "Annotate unified diffs and export review notes",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(summaryCommand(deps))
	root.AddCommand(exportCommand(deps))
	root.AddCommand(historyCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func summaryCommand(deps Dependencies) *cobra.Command {
	var inputPath string
	var baseRef string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Parse a diff and print per-file statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			diffText, err := readDiff(cmd, deps, inputPath, baseRef)
			if err != nil {
				return err
			}
			if err := enforceLimits(diffText, deps.Limits); err != nil {
				return err
			}

			s := newSession(cmd.Context(), deps, diffText)
			summary := s.Summary()
			if summary.IsEmpty() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return nil
			}
			if len(summary.Files) > deps.Limits.MaxFiles && deps.Limits.MaxFiles > 0 {
				return fmt.Errorf("diff touches %d files, limit is %d", len(summary.Files), deps.Limits.MaxFiles)
			}

			for _, f := range summary.Files {
				marks := ""
				if f.IsBinary {
					marks = " [binary]"
				}
				malformed := 0
				for _, h := range f.Hunks {
					if h.Malformed {
						malformed++
					}
				}
				if malformed > 0 {
					marks += fmt.Sprintf(" [%d malformed hunks]", malformed)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t+%d -%d (%d hunks)%s\n",
					f.Path, f.AddedCount, f.RemovedCount, len(f.Hunks), marks)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Read the diff from a file instead of git or stdin")
	cmd.Flags().StringVar(&baseRef, "base", "", "Diff the working tree against this ref (default HEAD)")
	return cmd
}

func exportCommand(deps Dependencies) *cobra.Command {
	var inputPath string
	var baseRef string
	var notes []string
	var format string
	var branch string
	var revision string
	var toStdout bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Annotate a diff and export the review document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(notes) == 0 {
				return errors.New("at least one --note is required")
			}

			diffText, err := readDiff(cmd, deps, inputPath, baseRef)
			if err != nil {
				return err
			}
			if err := enforceLimits(diffText, deps.Limits); err != nil {
				return err
			}

			s := newSession(cmd.Context(), deps, diffText)
			if n := len(s.Summary().Files); deps.Limits.MaxFiles > 0 && n > deps.Limits.MaxFiles {
				return fmt.Errorf("diff touches %d files, limit is %d", n, deps.Limits.MaxFiles)
			}

			for _, raw := range notes {
				target, text, err := parseNote(raw)
				if err != nil {
					return err
				}
				if _, err := s.Annotate(target, text); err != nil {
					return fmt.Errorf("note %q: %w", raw, err)
				}
			}

			if branch == "" || revision == "" {
				b, r := deps.Source.Metadata(cmd.Context())
				if branch == "" {
					branch = b
				}
				if revision == "" {
					revision = r
				}
			}

			doc := s.Document(branch, revision)

			if format == "" {
				format = deps.DefaultFormat
			}
			var content, path string
			switch format {
			case "", "markdown":
				if toStdout {
					content = deps.Markdown.Build(doc)
				} else {
					path, err = deps.Markdown.Write(cmd.Context(), doc, deps.OutputDir)
				}
			case "json":
				if toStdout {
					content, err = deps.JSON.Build(doc)
				} else {
					path, err = deps.JSON.Write(cmd.Context(), doc, deps.OutputDir)
				}
			default:
				return fmt.Errorf("unknown format %q (want markdown or json)", format)
			}
			if err != nil {
				return err
			}

			if toStdout {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			recordHistory(cmd, deps, doc, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Read the diff from a file instead of git or stdin")
	cmd.Flags().StringVar(&baseRef, "base", "", "Diff the working tree against this ref (default HEAD)")
	cmd.Flags().StringArrayVarP(&notes, "note", "n", nil,
		`Annotation in the form path=text, path:LINE=text, or path:START-END=text (repeatable)`)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: markdown or json")
	cmd.Flags().StringVar(&branch, "branch", "", "Override the branch recorded in the document header")
	cmd.Flags().StringVar(&revision, "revision", "", "Override the revision recorded in the document header")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the document instead of writing a file")
	return cmd
}

func historyCommand(deps Dependencies) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.History == nil {
				return errors.New("export history is disabled (store.enabled=false)")
			}
			records, err := deps.History.ListExports(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exports recorded")
				return nil
			}
			for _, rec := range records {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s@%s\t%d files, %d annotations\t%s\n",
					rec.Timestamp.Format("2006-01-02 15:04:05"), rec.Branch, rec.Revision,
					rec.Files, rec.Annotations, rec.OutputPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of rows to list")
	return cmd
}

func newSession(ctx context.Context, deps Dependencies, diffText string) *session.Session {
	opts := []session.Option{}
	if deps.Logger != nil {
		opts = append(opts, session.WithLogger(deps.Logger))
	}
	if deps.MaxAnnotations > 0 {
		opts = append(opts, session.WithStoreOptions(annotation.WithCapacity(deps.MaxAnnotations)))
	}
	return session.New(ctx, diffText, opts...)
}

// readDiff resolves the diff text from, in order of preference: an explicit
// file, piped stdin, or the repository working tree. A terminal on stdin is
// never read from; that would silently block.
func readDiff(cmd *cobra.Command, deps Dependencies, inputPath, baseRef string) (string, error) {
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return "", fmt.Errorf("read diff: %w", err)
		}
		return string(data), nil
	}

	if in := deps.Args.InReader; in != nil {
		if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			data, err := io.ReadAll(in)
			if err != nil {
				return "", fmt.Errorf("read stdin: %w", err)
			}
			if len(data) > 0 {
				return string(data), nil
			}
		}
	}

	if deps.Source == nil {
		return "", errors.New("no diff input: pass --input or pipe a diff")
	}
	return deps.Source.WorkingTreeDiff(cmd.Context(), baseRef)
}

func enforceLimits(diffText string, limits Limits) error {
	if limits.MaxLines <= 0 {
		return nil
	}
	if n := strings.Count(diffText, "\n") + 1; n > limits.MaxLines {
		return fmt.Errorf("diff is %d lines, limit is %d", n, limits.MaxLines)
	}
	return nil
}

// recordHistory is best effort: a broken history database must not fail an
// export that already landed on disk.
func recordHistory(cmd *cobra.Command, deps Dependencies, doc domain.Document, path string) {
	if deps.History == nil {
		return
	}
	err := deps.History.RecordExport(cmd.Context(), sqlite.ExportRecord{
		Timestamp:   time.Now().UTC(),
		Branch:      doc.Branch,
		Revision:    doc.Revision,
		Files:       len(doc.Reviews),
		Annotations: doc.AnnotationCount(),
		OutputPath:  path,
	})
	if err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record export history: %v\n", err)
	}
}
