package report

import (
	"bytes"
	htmltemplate "html/template"
	"io"
	"os"
	texttemplate "text/template"

	"go.uber.org/multierr"

	"github.com/hamed0406/pingmonitor/internal/domain"
)

var (
	textTmpl = texttemplate.Must(texttemplate.New("text").Parse(textSource))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("html").Parse(htmlSource))
)

func Text(w io.Writer, snap domain.Snapshot, meta Meta) error {
	return textTmpl.Execute(w, NewView(snap, meta))
}

func HTML(w io.Writer, snap domain.Snapshot, meta Meta) error {
	return htmlTmpl.Execute(w, NewView(snap, meta))
}

// WriteFiles renders both reports. An empty path skips that format; every
// failure is reported, not only the first.
func WriteFiles(htmlPath, textPath string, snap domain.Snapshot, meta Meta) error {
	var err error
	if htmlPath != "" {
		err = multierr.Append(err, writeFile(htmlPath, func(w io.Writer) error { return HTML(w, snap, meta) }))
	}
	if textPath != "" {
		err = multierr.Append(err, writeFile(textPath, func(w io.Writer) error { return Text(w, snap, meta) }))
	}
	return err
}

func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

const textSource = `Ping Monitor Report - {{.Target}}
Generated: {{.Generated}}   Status: {{.Status}}
System: {{.System}} | Go: {{.GoVersion}} | Hostname: {{.Hostname}}

Monitoring duration:    {{.Duration}}
Probe interval:         {{.Interval}}
Total pings:            {{.Total}}
Dropped packets:        {{.Dropped}}
Success rate:           {{.SuccessRate}}
Max consecutive drops:  {{.MaxConsecutive}}
{{if not .HasData}}
No probes were completed; there is no data to report.
{{else if .HasDrops}}
Issue detected: packet loss detected during monitoring period.

Outages ({{len .Episodes}}):
{{range .Episodes}}  {{.Start}} .. {{.Last}}  {{.Drops}} drop(s)
{{end}}
Hourly drop analysis:
{{range .Hours}}  {{.Hour}}:00  {{.Drops}}
{{end}}
Drop log:
{{range .Drops}}  {{.Time}}  consecutive={{.Consecutive}}  {{.Note}}
{{end}}{{else}}
Good news: no packet loss detected during monitoring period.
{{end}}
Summary: {{.Dropped}} packet drops out of {{.Total}} total pings ({{.LossRate}} loss rate).
Impact: {{.Impact}}
`

const htmlSource = `<!DOCTYPE html>
<html>
<head>
    <title>Ping Monitor Report - {{.Target}}</title>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
        .container { max-width: 1200px; margin: 0 auto; background-color: white; padding: 20px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
        .system-info { background-color: #ecf0f1; padding: 10px; border-radius: 5px; margin-bottom: 20px; font-size: 14px; }
        .stats { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 15px; margin-bottom: 30px; }
        .stat-box { background-color: #ecf0f1; padding: 15px; border-radius: 5px; text-align: center; }
        .stat-number { font-size: 24px; font-weight: bold; color: #2c3e50; }
        .stat-label { color: #7f8c8d; margin-top: 5px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 10px; text-align: left; }
        th { background-color: #34495e; color: white; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        .alert { background-color: #e74c3c; color: white; padding: 10px; border-radius: 5px; margin-bottom: 20px; }
        .success { background-color: #27ae60; color: white; padding: 10px; border-radius: 5px; margin-bottom: 20px; }
        .nodata { background-color: #95a5a6; color: white; padding: 10px; border-radius: 5px; margin-bottom: 20px; }
        .summary { margin-top: 30px; padding: 15px; background-color: #f8f9fa; border-radius: 5px; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>Ping Monitor Report</h1>
        <p><strong>Target:</strong> {{.Target}} | <strong>Generated:</strong> {{.Generated}} | <strong>Status:</strong> {{.Status}}</p>
    </div>

    <div class="system-info">
        <strong>System Info:</strong> {{.System}} | <strong>Go:</strong> {{.GoVersion}} | <strong>Hostname:</strong> {{.Hostname}}
    </div>

    <div class="stats">
        <div class="stat-box"><div class="stat-number">{{.Duration}}</div><div class="stat-label">Monitoring Duration</div></div>
        <div class="stat-box"><div class="stat-number">{{.Total}}</div><div class="stat-label">Total Pings</div></div>
        <div class="stat-box"><div class="stat-number">{{.Dropped}}</div><div class="stat-label">Dropped Packets</div></div>
        <div class="stat-box"><div class="stat-number">{{.SuccessRate}}</div><div class="stat-label">Success Rate</div></div>
        <div class="stat-box"><div class="stat-number">{{.MaxConsecutive}}</div><div class="stat-label">Max Consecutive Drops</div></div>
    </div>

    {{if not .HasData}}<div class="nodata"><strong>No Data:</strong> no probes were completed.</div>
    {{else if .HasDrops}}<div class="alert"><strong>Issue Detected:</strong> Packet loss detected during monitoring period.</div>
    {{else}}<div class="success"><strong>Good News:</strong> No packet loss detected during monitoring period.</div>{{end}}

    <h2>Detailed Drop Log</h2>
    {{if .HasDrops}}<p>Total packet drops recorded: <strong>{{len .Drops}}</strong></p>
    <table class="drops-table">
        <thead><tr><th>Timestamp</th><th>Consecutive Drops</th><th>Notes</th></tr></thead>
        <tbody>{{range .Drops}}<tr><td>{{.Time}}</td><td>{{.Consecutive}}</td><td>{{.Note}}</td></tr>{{end}}</tbody>
    </table>
    {{else}}<p>No packet drops recorded during monitoring period.</p>{{end}}

    <h2>Outages</h2>
    {{if .Episodes}}<table class="episodes-table">
        <thead><tr><th>Start</th><th>Last Drop</th><th>Drops</th></tr></thead>
        <tbody>{{range .Episodes}}<tr><td>{{.Start}}</td><td>{{.Last}}</td><td>{{.Drops}}</td></tr>{{end}}</tbody>
    </table>
    {{else}}<p>No outages.</p>{{end}}

    <h2>Hourly Drop Analysis</h2>
    {{if .Hours}}<table class="hourly-table">
        <thead><tr><th>Hour</th><th>Drops</th></tr></thead>
        <tbody>{{range .Hours}}<tr><td>{{.Hour}}</td><td>{{.Drops}}</td></tr>{{end}}</tbody>
    </table>
    {{else}}<p>No drops to analyze by hour.</p>{{end}}

    <div class="summary">
        <h3>Report Summary for ISP</h3>
        <p><strong>Customer Issue:</strong> Intermittent packet loss detected on internet connection.</p>
        <p><strong>Test Method:</strong> Continuous ping monitoring to {{.Target}} every {{.Interval}} over {{.Duration}}.</p>
        <p><strong>Results:</strong> {{.Dropped}} packet drops out of {{.Total}} total pings ({{.LossRate}} loss rate).</p>
        <p><strong>Impact:</strong> {{.Impact}}</p>
        <p><strong>System:</strong> {{.System}}</p>
    </div>
</div>
</body>
</html>
`
