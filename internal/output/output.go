package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"workdesk/internal/model"

	"github.com/Masterminds/sprig/v3"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Format selects how the worklist is rendered
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatTemplate Format = "template"
)

// ParseFormat parses a format name. An empty name selects the table.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatTemplate), "tmpl":
		return FormatTemplate, nil
	default:
		return "", fmt.Errorf("unknown output format: %s (expected table, json or template)", name)
	}
}

const maxSummaryWidth = 60

var (
	red    = color.New(color.FgHiRed).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// AttentionColor returns the attention name colored by urgency
func AttentionColor(a model.Attention) string {
	switch a {
	case model.AttentionNeedsMyAttention:
		return red(a.String())
	case model.AttentionNeedsMyReview:
		return yellow(a.String())
	case model.AttentionWaitingOnOthers:
		return cyan(a.String())
	case model.AttentionReviewed:
		return green(a.String())
	default:
		return faint(a.String())
	}
}

// Renderer writes worklists to Out
type Renderer struct {
	Out      io.Writer
	Format   Format
	Template string

	tmpl *template.Template
}

// New creates a renderer. The template is parsed up front so a bad template
// fails before any network work is done.
func New(out io.Writer, format Format, tmplText string) (*Renderer, error) {
	if out == nil {
		out = os.Stdout
	}
	r := &Renderer{Out: out, Format: format, Template: tmplText}

	if format == FormatTemplate {
		if strings.TrimSpace(tmplText) == "" {
			return nil, fmt.Errorf("template format requires a template")
		}
		tmpl, err := template.New("worklist").Funcs(sprig.FuncMap()).Parse(tmplText)
		if err != nil {
			return nil, fmt.Errorf("template parsing failed: %w", err)
		}
		r.tmpl = tmpl
	}
	return r, nil
}

// Header prints who the worklist is for and the active sprint. JSON output
// has no header.
func (r *Renderer) Header(displayName string, sprint *model.Sprint) {
	if r.Format != FormatTable {
		return
	}
	if displayName != "" {
		fmt.Fprintf(r.Out, "%s %s\n", faint("Worklist for"), bold(displayName))
	}
	if sprint != nil {
		line := sprint.Name
		if !sprint.EndDate.IsZero() {
			line += fmt.Sprintf(" (ends %s)", sprint.EndDate.Format("2006-01-02"))
		}
		fmt.Fprintf(r.Out, "%s %s\n", faint("Sprint"), line)
	}
	if displayName != "" || sprint != nil {
		fmt.Fprintln(r.Out)
	}
}

// Render writes the items in the configured format
func (r *Renderer) Render(items []model.WorkItem) error {
	switch r.Format {
	case FormatJSON:
		return r.renderJSON(items)
	case FormatTemplate:
		return r.renderTemplate(items)
	default:
		return r.renderTable(items)
	}
}

func (r *Renderer) renderJSON(items []model.WorkItem) error {
	if items == nil {
		items = []model.WorkItem{}
	}
	enc := json.NewEncoder(r.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode worklist: %w", err)
	}
	return nil
}

// renderTemplate executes the template once per item
func (r *Renderer) renderTemplate(items []model.WorkItem) error {
	if r.tmpl == nil {
		return fmt.Errorf("template format requires a template")
	}
	for _, item := range items {
		if err := r.tmpl.Execute(r.Out, item); err != nil {
			return fmt.Errorf("template execution failed for %s: %w", item.Key, err)
		}
		if !strings.HasSuffix(r.Template, "\n") {
			fmt.Fprintln(r.Out)
		}
	}
	return nil
}

func (r *Renderer) renderTable(items []model.WorkItem) error {
	if len(items) == 0 {
		fmt.Fprintln(r.Out, "Nothing on your plate.")
		return nil
	}

	table := tablewriter.NewTable(r.Out,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header([]string{"Attention", "Key", "Stage", "Summary", "PR", "Next"})

	for _, item := range items {
		if err := table.Append([]string{
			AttentionColor(item.Attention),
			item.Key,
			item.Stage.String(),
			truncate(item.Ticket.Summary, maxSummaryWidth),
			primaryRef(item),
			item.Reason,
		}); err != nil {
			return fmt.Errorf("failed to add row %s: %w", item.Key, err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// primaryRef formats the primary pull request as repo#number
func primaryRef(item model.WorkItem) string {
	if item.Primary == nil {
		if len(item.PullRequests) > 1 {
			return fmt.Sprintf("%d PRs", len(item.PullRequests))
		}
		return "-"
	}
	ref := model.StubKey(*item.Primary)
	if item.Primary.Draft {
		ref += " (draft)"
	}
	return ref
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
