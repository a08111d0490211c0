package web

import (
	"html/template"
	"strings"

	"github.com/rcaap/bibsheet/internal/record"
	"github.com/rcaap/bibsheet/internal/sheet"
	"github.com/rcaap/bibsheet/internal/syncer"
)

type indexData struct {
	LookupEnabled bool
}

type previewEntry struct {
	CiteKey string
	Title   string
	Authors string
	Year    string
	Venue   string
	DOI     string
}

type planRow struct {
	Table    string
	Inserted int
	Updated  int
	Skipped  int
}

type previewData struct {
	Source   string
	Entries  []previewEntry
	Warnings int
	Errors   int
	Plan     []planRow
}

type resultData struct {
	Entries int
	Plan    []planRow
	Applied []string
}

type lookupData struct {
	DOI     string
	Entry   *record.Entry
	Authors string
	Error   string
}

type errorData struct {
	Message string
}

// scholarAuthors renders an author list the way citation indexes do:
// "Family, G.; Other, J.".
func scholarAuthors(authors []record.Author) string {
	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		parts = append(parts, scholarName(a))
	}
	return strings.Join(parts, "; ")
}

func scholarName(a record.Author) string {
	if a.Family == "" {
		return a.Normalized
	}
	if a.Given == "" {
		return a.Family
	}
	initials := make([]string, 0, 2)
	for _, tok := range strings.Fields(a.Given) {
		r := []rune(tok)
		initials = append(initials, string(r[0])+".")
	}
	return a.Family + ", " + strings.Join(initials, " ")
}

func previewEntries(entries []record.Entry) []previewEntry {
	out := make([]previewEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, previewEntry{
			CiteKey: e.CiteKey,
			Title:   e.Title,
			Authors: scholarAuthors(e.Authors),
			Year:    e.YearString(),
			Venue:   e.Venue,
			DOI:     e.DOI,
		})
	}
	return out
}

func planRows(report *syncer.Report) []planRow {
	out := make([]planRow, 0, len(sheet.SyncOrder))
	for _, t := range sheet.SyncOrder {
		c, ok := report.Tables[t.Name]
		if !ok {
			continue
		}
		out = append(out, planRow{
			Table:    t.Name,
			Inserted: c.Inserted,
			Updated:  c.Updated,
			Skipped:  c.Skipped,
		})
	}
	return out
}

// templates is parsed at init time to fail fast on template errors.
var templates = template.Must(template.New("web").Parse(`
{{define "head"}}
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<title>{{.}} - bibsheet</title>
	<style>
		* { box-sizing: border-box; }
		body { font-family: system-ui, sans-serif; max-width: 900px; margin: 0 auto; padding: 1rem; line-height: 1.5; }
		a { color: #0066cc; }
		h1 { font-size: 1.4rem; }
		.upload-form { margin: 1rem 0; padding: 1rem; background: #f8f9fa; border-radius: 4px; }
		.upload-form input[type="text"] { padding: 0.5rem; width: 320px; font-size: 1rem; }
		.upload-form button, .btn { padding: 0.5rem 1rem; font-size: 1rem; cursor: pointer; border: none; border-radius: 4px; background: #0066cc; color: white; }
		.btn-secondary { background: #6c757d; }
		table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
		th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #eee; }
		th { background: #f5f5f5; }
		.entry { border-bottom: 1px solid #eee; padding: 0.75rem 0; }
		.entry-title { font-weight: 600; }
		.entry-authors { color: #444; }
		.entry-meta { font-size: 0.9rem; color: #666; font-family: monospace; }
		.warn { color: #b35c00; }
		.err { color: #b30000; }
		.ok { color: #28a745; }
	</style>
</head>
<body>
{{end}}

{{define "foot"}}
</body>
</html>
{{end}}

{{define "index"}}
{{template "head" "Upload"}}
<h1>BibTeX to spreadsheet sync</h1>
<form class="upload-form" action="/preview" method="post" enctype="multipart/form-data">
	<p><input type="file" name="bibfile" accept=".bib" required></p>
	<button type="submit">Preview</button>
</form>
{{if .LookupEnabled}}
<form class="upload-form" action="/lookup" method="get">
	<p><input type="text" name="doi" placeholder="Look up a DOI..."></p>
	<button type="submit">Look up</button>
</form>
{{end}}
{{template "foot" .}}
{{end}}

{{define "plantable"}}
<table>
	<tr><th>Table</th><th>Insert</th><th>Update</th><th>Unchanged</th></tr>
	{{range .}}
	<tr><td>{{.Table}}</td><td>{{.Inserted}}</td><td>{{.Updated}}</td><td>{{.Skipped}}</td></tr>
	{{end}}
</table>
{{end}}

{{define "preview"}}
{{template "head" "Preview"}}
<h1>Preview</h1>
<p>{{len .Entries}} entries parsed{{if .Warnings}}, <span class="warn">{{.Warnings}} warnings</span>{{end}}{{if .Errors}}, <span class="err">{{.Errors}} entries failed to parse</span>{{end}}.</p>
<h2>Pending changes</h2>
{{template "plantable" .Plan}}
<form action="/sync" method="post">
	<input type="hidden" name="source" value="{{.Source}}">
	<button type="submit" class="btn">Apply</button>
	<a href="/">Cancel</a>
</form>
<h2>Entries</h2>
{{range .Entries}}
<div class="entry">
	<div class="entry-title">{{.Title}}</div>
	<div class="entry-authors">{{.Authors}}</div>
	<div class="entry-meta">{{.CiteKey}} · {{.Year}}{{if .Venue}} · {{.Venue}}{{end}}{{if .DOI}} · {{.DOI}}{{end}}</div>
</div>
{{end}}
{{template "foot" .}}
{{end}}

{{define "result"}}
{{template "head" "Synced"}}
<h1 class="ok">Sync complete</h1>
<p>{{.Entries}} entries processed. Tables written: {{range $i, $t := .Applied}}{{if $i}}, {{end}}{{$t}}{{end}}.</p>
{{template "plantable" .Plan}}
<p><a href="/">Back</a></p>
{{template "foot" .}}
{{end}}

{{define "lookup"}}
{{template "head" "Lookup"}}
<h1>DOI lookup</h1>
<form class="upload-form" action="/lookup" method="get">
	<p><input type="text" name="doi" value="{{.DOI}}" placeholder="10.1000/xyz123"></p>
	<button type="submit">Look up</button>
</form>
{{if .Error}}<p class="err">{{.Error}}</p>{{end}}
{{with .Entry}}
<div class="entry">
	<div class="entry-title">{{.Title}}</div>
	<div class="entry-authors">{{$.Authors}}</div>
	<div class="entry-meta">{{.YearString}}{{if .Venue}} · {{.Venue}}{{end}}{{if .Publisher}} · {{.Publisher}}{{end}} · {{.DOI}}</div>
	{{if .Abstract}}<p>{{.Abstract}}</p>{{end}}
</div>
{{end}}
<p><a href="/">Back</a></p>
{{template "foot" .}}
{{end}}

{{define "error"}}
{{template "head" "Error"}}
<h1 class="err">Error</h1>
<p>{{.Message}}</p>
<p><a href="/">Back</a></p>
{{template "foot" .}}
{{end}}
`))
