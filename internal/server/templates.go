package server

import "html/template"

// Pages are embedded so the binary is self-contained. Shared chrome lives in
// the "head" and "nav" templates.
const pageTemplates = `
{{define "head"}}
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}} - PowerDash</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif;
         background: #0d1117; color: #c9d1d9; padding: 20px; }
  h1 { color: #58a6ff; font-size: 1.4em; margin-bottom: 16px; }
  nav { margin-bottom: 20px; }
  nav a { color: #8b949e; margin-right: 16px; text-decoration: none; }
  nav a.active { color: #58a6ff; }
  .cards { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr));
           gap: 12px; margin-bottom: 20px; }
  .card { background: #161b22; border: 1px solid #30363d; border-radius: 6px;
          padding: 16px; text-align: center; }
  .card .value { font-size: 1.8em; font-weight: 700; color: #58a6ff; }
  .card .label { font-size: 0.75em; color: #8b949e; text-transform: uppercase; }
  .badge { padding: 2px 10px; border-radius: 12px; font-size: 0.8em; }
  .badge.connected { background: #1d3b2a; color: #3fb950; }
  .badge.disconnected { background: #3d1d1d; color: #f85149; }
  table { width: 100%; border-collapse: collapse; background: #161b22;
          border: 1px solid #30363d; border-radius: 6px; }
  th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #30363d; }
  th { color: #8b949e; font-size: 0.8em; text-transform: uppercase; }
  .sev-critical { color: #f85149; } .sev-warning { color: #d29922; } .sev-info { color: #58a6ff; }
</style>
</head>
<body>
{{end}}

{{define "nav"}}
<h1>{{.Title}}</h1>
<nav>
  <a href="/">Realtime</a>
  <a href="/analysis">Analysis</a>
  <a href="/alerts">Alerts</a>
  <a href="/reports">Reports</a>
  <a href="/history">History</a>
</nav>
{{end}}

{{define "realtime"}}
{{template "head" .}}
{{template "nav" .}}
<p style="margin-bottom:12px">Status:
  <span id="conn" class="badge {{if .Snapshot.Connected}}connected{{else}}disconnected{{end}}">
    {{if .Snapshot.Connected}}Connected{{else}}Disconnected{{end}}
  </span>
</p>
<div class="cards">
  <div class="card"><div class="value" id="voltage">--</div><div class="label">Voltage (V)</div></div>
  <div class="card"><div class="value" id="current">--</div><div class="label">Current (A)</div></div>
  <div class="card"><div class="value" id="power">--</div><div class="label">Power (W)</div></div>
  <div class="card"><div class="value" id="frequency">--</div><div class="label">Frequency (Hz)</div></div>
  <div class="card"><div class="value" id="pf">--</div><div class="label">Power Factor</div></div>
  <div class="card"><div class="value" id="cost">--</div><div class="label">Cost / hour (local)</div></div>
</div>
<table>
  <thead><tr><th>#</th><th>Time</th><th>Voltage</th><th>Current</th><th>Power</th><th>PF</th></tr></thead>
  <tbody id="trend"></tbody>
</table>
<script>
function fmt(v, d) { return v == null ? "--" : v.toFixed(d); }
function apply(snap) {
  document.getElementById("conn").className = "badge " + (snap.connected ? "connected" : "disconnected");
  document.getElementById("conn").textContent = snap.connected ? "Connected" : "Disconnected";
  if (snap.focus) {
    document.getElementById("voltage").textContent = fmt(snap.focus.voltage, 1);
    document.getElementById("current").textContent = fmt(snap.focus.current, 2);
    document.getElementById("power").textContent = fmt(snap.focus.power_watts, 0);
    document.getElementById("frequency").textContent = fmt(snap.focus.frequency, 1);
    document.getElementById("pf").textContent = fmt(snap.focus.power_factor, 2);
  }
  if (snap.hourlyCost) {
    document.getElementById("cost").textContent = fmt(snap.hourlyCost.local, 0);
  }
  var rows = "";
  (snap.buffer || []).forEach(function(r, i) {
    var mark = i === snap.focusIndex ? " style=\"color:#58a6ff\"" : "";
    rows += "<tr" + mark + "><td>" + (i + 1) + "</td><td>" + new Date(r.timestamp).toLocaleTimeString() +
      "</td><td>" + fmt(r.voltage, 1) + "</td><td>" + fmt(r.current, 2) +
      "</td><td>" + fmt(r.power_watts, 0) + "</td><td>" + fmt(r.power_factor, 2) + "</td></tr>";
  });
  document.getElementById("trend").innerHTML = rows;
}
apply({{.SnapshotJSON}});
var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = function(e) { apply(JSON.parse(e.data)); };
</script>
</body></html>
{{end}}

{{define "analysis"}}
{{template "head" .}}
{{template "nav" .}}
{{with .Analysis.PowerFactor}}
<div class="cards">
  <div class="card"><div class="value">{{printf "%.2f" .Average}}</div><div class="label">Avg power factor</div></div>
  <div class="card"><div class="value">{{printf "%.2f" .Minimum}}</div><div class="label">Min power factor</div></div>
  <div class="card"><div class="value">{{.BelowGood}}</div><div class="label">Samples under 0.85</div></div>
</div>
{{end}}
<h1 style="font-size:1.1em">Peak usage hours</h1>
<table>
  <thead><tr><th>Hour</th><th>Energy (kWh)</th><th>Avg power (W)</th></tr></thead>
  <tbody>
  {{range .Analysis.Peak}}
    <tr><td>{{.Hour.Format "Jan 2 15:04"}}</td><td>{{printf "%.3f" .EnergyKWh}}</td><td>{{printf "%.0f" .AvgPower}}</td></tr>
  {{else}}
    <tr><td colspan="3">No data yet</td></tr>
  {{end}}
  </tbody>
</table>
<h1 style="font-size:1.1em;margin-top:20px">Load pattern by hour of day</h1>
<table>
  <thead><tr><th>Hour</th><th>Avg power (W)</th><th>Max power (W)</th></tr></thead>
  <tbody>
  {{range .Analysis.Load}}
    <tr><td>{{printf "%02d:00" .HourOfDay}}</td><td>{{printf "%.0f" .AvgPower}}</td><td>{{printf "%.0f" .MaxPower}}</td></tr>
  {{else}}
    <tr><td colspan="3">No data yet</td></tr>
  {{end}}
  </tbody>
</table>
</body></html>
{{end}}

{{define "alerts"}}
{{template "head" .}}
{{template "nav" .}}
{{with .Alerts.Summary}}
<div class="cards">
  <div class="card"><div class="value">{{.Total}}</div><div class="label">Total</div></div>
  <div class="card"><div class="value sev-critical">{{.Critical}}</div><div class="label">Critical</div></div>
  <div class="card"><div class="value sev-warning">{{.Warning}}</div><div class="label">Warning</div></div>
  <div class="card"><div class="value sev-info">{{.Info}}</div><div class="label">Info</div></div>
  <div class="card"><div class="value">{{.Unread}}</div><div class="label">Unread</div></div>
</div>
{{end}}
<table>
  <thead><tr><th>Date</th><th>Severity</th><th>Type</th><th>Message</th><th>Value</th></tr></thead>
  <tbody>
  {{range .Alerts.Alerts}}
    <tr><td>{{.Date.Format "Jan 2 15:04"}}</td><td class="sev-{{.Severity}}">{{.Severity}}</td>
        <td>{{.Type}}</td><td>{{.Message}}</td><td>{{printf "%.2f" .Value}}</td></tr>
  {{else}}
    <tr><td colspan="5">No alerts</td></tr>
  {{end}}
  </tbody>
</table>
</body></html>
{{end}}

{{define "reports"}}
{{template "head" .}}
{{template "nav" .}}
{{with .Reports.Current}}
<div class="cards">
  <div class="card"><div class="value">{{printf "%.1f" .TotalEnergy}}</div><div class="label">kWh this month</div></div>
  <div class="card"><div class="value">{{printf "%.1f" .AvgDailyEnergy}}</div><div class="label">Avg daily kWh</div></div>
  <div class="card"><div class="value">{{printf "%.0f" .CostLocal}}</div><div class="label">Cost (local)</div></div>
  <div class="card"><div class="value">{{printf "%.2f" .CostUSD}}</div><div class="label">Cost (USD)</div></div>
</div>
{{end}}
<table>
  <thead><tr><th>Month</th><th>Total kWh</th><th>Avg daily kWh</th><th>Peak date</th><th>Cost (local)</th><th>Cost (USD)</th></tr></thead>
  <tbody>
  {{range .Reports.Monthly}}
    <tr><td>{{.Month}}/{{.Year}}</td><td>{{printf "%.1f" .TotalEnergy}}</td><td>{{printf "%.1f" .AvgDailyEnergy}}</td>
        <td>{{.PeakDate.Format "Jan 2"}}</td><td>{{printf "%.0f" .CostLocal}}</td><td>{{printf "%.2f" .CostUSD}}</td></tr>
  {{else}}
    <tr><td colspan="6">No reports yet</td></tr>
  {{end}}
  </tbody>
</table>
</body></html>
{{end}}

{{define "history"}}
{{template "head" .}}
{{template "nav" .}}
{{range $section := .Sections}}
<h1 style="font-size:1.1em;margin-top:20px">{{$section.Name}}</h1>
<table>
  <thead><tr><th>Period</th><th>Energy (kWh)</th><th>Avg power (W)</th><th>Peak power (W)</th></tr></thead>
  <tbody>
  {{range $section.Buckets}}
    <tr><td>{{.Period.Format $section.Layout}}</td><td>{{printf "%.3f" .EnergyKWh}}</td>
        <td>{{printf "%.0f" .AvgPower}}</td><td>{{printf "%.0f" .PeakPower}}</td></tr>
  {{else}}
    <tr><td colspan="4">No data yet</td></tr>
  {{end}}
  </tbody>
</table>
{{end}}
</body></html>
{{end}}
`

func parseTemplates() *template.Template {
	return template.Must(template.New("pages").Parse(pageTemplates))
}
