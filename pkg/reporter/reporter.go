package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/amosWeiskopf/linksieve/internal/models"
)

// Summary formats accepted by RenderSummary.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatNone     = "none"
)

// Formats lists every supported summary format.
var Formats = []string{FormatTable, FormatMarkdown, FormatJSON, FormatNone}

// ValidFormat reports whether format is one of Formats.
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// EncodeResults serialises the result map as a single JSON object. Domains
// that were fetched but kept nothing encode as [] rather than null.
func EncodeResults(results models.ResultMap, pretty bool) ([]byte, error) {
	out := make(map[string][]string, len(results))
	for domain, urls := range results {
		if urls == nil {
			urls = []string{}
		}
		out[domain] = urls
	}

	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}
	return data, nil
}

// WriteResults writes the result map to path, replacing any existing file.
func WriteResults(path string, results models.ResultMap, pretty bool) error {
	data, err := EncodeResults(results, pretty)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// RenderSummary writes s to w in the given format.
func RenderSummary(w io.Writer, s *models.Summary, format string) error {
	switch format {
	case FormatTable:
		return renderTable(w, s, false)
	case FormatMarkdown:
		return renderTable(w, s, true)
	case FormatJSON:
		return renderJSON(w, s)
	case FormatNone:
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func renderJSON(w io.Writer, s *models.Summary) error {
	data, err := json.MarshalIndent(struct {
		*models.Summary
		Domains []models.DomainResult `json:"domains"`
	}{Summary: s, Domains: s.Domains}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func renderTable(w io.Writer, s *models.Summary, markdown bool) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run %s", s.RunID)
	t.AppendHeader(table.Row{"Domain", "State", "Status", "Links", "Matched", "Kept", "Duplicates", "Elapsed", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{{Name: "Error", WidthMax: 60}})

	for _, d := range s.Domains {
		status := ""
		if d.StatusCode != 0 {
			status = fmt.Sprint(d.StatusCode)
		}
		t.AppendRow(table.Row{
			d.Domain,
			d.State.String(),
			status,
			d.LinksSeen,
			d.Matched,
			len(d.URLs),
			d.Duplicates,
			d.Elapsed.Round(time.Millisecond).String(),
			d.Error,
		})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d domains", s.TotalDomains),
		fmt.Sprintf("%d ok / %d failed", s.Completed, s.FetchFailed+s.ParseFailed),
		"", "", "",
		s.MatchedURLs,
		s.Duplicates,
		s.Duration.Round(time.Millisecond).String(),
		"",
	})

	var b strings.Builder
	if markdown {
		b.WriteString(t.RenderMarkdown())
	} else {
		b.WriteString(t.Render())
	}
	b.WriteString("\n")

	if len(s.TopSites) > 0 {
		sites := table.NewWriter()
		sites.SetStyle(table.StyleLight)
		sites.AppendHeader(table.Row{"Site", "Matched URLs"})
		for _, sc := range s.TopSites {
			sites.AppendRow(table.Row{sc.Site, sc.Count})
		}
		b.WriteString("\n")
		if markdown {
			b.WriteString(sites.RenderMarkdown())
		} else {
			b.WriteString(sites.Render())
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
