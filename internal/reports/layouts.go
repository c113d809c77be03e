package reports

// The layouts are self-contained documents: inline styles only, no external
// assets, so a preview link renders the same everywhere.

const legacyLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Meta.ProjectName}} — Pricing Proposal</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1a1a2e; margin: 40px; }
h1 { font-size: 26px; margin-bottom: 4px; }
h2 { font-size: 18px; margin-top: 28px; border-bottom: 1px solid #d0d0e0; padding-bottom: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ececf4; font-size: 13px; }
th { background: #f4f4fb; }
td.amount, th.amount { text-align: right; }
.free { color: #2d8a4e; font-weight: bold; }
.totals td { font-weight: bold; }
footer { margin-top: 48px; font-size: 11px; color: #8a8aa0; }
</style>
</head>
<body>
<h1>{{.Meta.CompanyName}} Pricing Proposal</h1>
<p>Prepared for <strong>{{.Meta.ClientName}}</strong> — {{.Meta.ProjectName}}</p>
{{if .Meta.PreparedBy}}<p>Prepared by {{.Meta.PreparedBy}}</p>{{end}}
<p>{{.GeneratedAtText}}</p>

<h2>Summary</h2>
<table>
<tr class="totals"><td>One-Time Charges</td><td class="amount">{{.OneTimeTotal}}</td></tr>
{{if .HasRecurring}}
<tr class="totals"><td>Monthly Charges</td><td class="amount">{{.MonthlyTotal}}</td></tr>
<tr class="totals"><td>Yearly Charges</td><td class="amount">{{.YearlyTotal}}</td></tr>
{{end}}
<tr class="totals"><td>Total Project Cost</td><td class="amount">{{.TotalProject}}</td></tr>
</table>
{{if .ShowGlobal}}<p>Global discount applied: {{.GlobalLabel}}</p>{{end}}
{{if .ShowSavings}}<p>Total savings: <strong>{{.Savings}}</strong> ({{.SavingsRate}})</p>{{end}}

<footer>{{.Meta.CompanyName}} · {{.Meta.ContactEmail}} · Platform v{{.Meta.PlatformVersion}}</footer>
</body>
</html>
`

const customLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Meta.ProjectName}} — {{.TemplateName}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1a1a2e; margin: 40px; }
h1 { font-size: 30px; margin-bottom: 4px; }
h2 { font-size: 20px; margin-top: 32px; border-bottom: 1px solid #d0d0e0; padding-bottom: 4px; }
table { width: 100%; border-collapse: collapse; margin-top: 12px; }
th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ececf4; font-size: 13px; }
th { background: #f4f4fb; }
td.amount, th.amount { text-align: right; }
.free { color: #2d8a4e; font-weight: bold; }
.totals td { font-weight: bold; }
.cover { text-align: center; padding: 120px 0 80px 0; page-break-after: always; }
.page { page-break-after: always; }
ol.toc { font-size: 14px; line-height: 1.8; }
footer { margin-top: 48px; font-size: 11px; color: #8a8aa0; }
</style>
</head>
<body>

<div class="cover">
<h1>{{.Meta.ProjectName}}</h1>
<p>Prepared for <strong>{{.Meta.ClientName}}</strong></p>
{{if .Meta.PreparedBy}}<p>Prepared by {{.Meta.PreparedBy}}</p>{{end}}
<p>{{.GeneratedAtText}}</p>
<p>{{.Meta.CompanyName}}</p>
</div>

{{if .Sections}}
<div class="page">
<h2>Table of Contents</h2>
<ol class="toc">
{{range .Sections}}<li>{{.Title}}</li>
{{end}}</ol>
</div>

{{range .Sections}}
<div class="page">
<h2>{{.Number}}. {{.Title}}</h2>
{{if .IsHTML}}{{.HTML}}{{else}}<p>{{.Text}}</p>{{end}}
</div>
{{end}}
{{end}}

<div class="page">
<h2>Itemized Pricing</h2>
<table>
<tr><th>Service</th><th>Description</th><th>Unit</th><th class="amount">Qty</th><th class="amount">Unit Price</th><th class="amount">Discount</th><th class="amount">Total</th></tr>
{{range .Lines}}
<tr>
<td>{{.Name}}{{if .IsFree}} <span class="free">FREE</span>{{end}}</td>
<td>{{.Description}}</td>
<td>{{.Unit}}</td>
<td class="amount">{{.Quantity}}</td>
<td class="amount">{{.UnitPrice}}</td>
<td class="amount">{{if .Discount}}{{.Discount}}{{else}}&mdash;{{end}}</td>
<td class="amount">{{.Total}}</td>
</tr>
{{end}}
</table>

<h2>Category Breakdown</h2>
<table>
{{range .Categories}}
<tr><td>{{.Slug}}</td><td class="amount">{{.Total}}</td></tr>
{{end}}
</table>

{{if .ShowGlobal}}
<h2>Global Discount</h2>
<p>{{.GlobalLabel}}</p>
{{end}}

{{if .ShowSavings}}
<h2>Savings</h2>
<p>Total savings: <strong>{{.Savings}}</strong> ({{.SavingsRate}})</p>
{{end}}

<h2>Investment Summary</h2>
<table>
<tr class="totals"><td>One-Time Charges</td><td class="amount">{{.OneTimeTotal}}</td></tr>
{{if .HasRecurring}}
<tr class="totals"><td>Monthly Charges</td><td class="amount">{{.MonthlyTotal}}</td></tr>
<tr class="totals"><td>Yearly Charges</td><td class="amount">{{.YearlyTotal}}</td></tr>
{{end}}
<tr class="totals"><td>Total Project Cost</td><td class="amount">{{.TotalProject}}</td></tr>
</table>

{{if .ConfigFields}}
<h2>Configuration</h2>
{{range .ConfigFields}}
<p><strong>{{.Name}}</strong>{{if .Labels}}: {{range $i, $l := .Labels}}{{if $i}}, {{end}}{{$l}}{{end}}{{end}}</p>
{{end}}
{{end}}
</div>

<footer>{{.Meta.CompanyName}} · {{.Meta.ContactEmail}} · Platform v{{.Meta.PlatformVersion}}</footer>
</body>
</html>
`
