package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/presence-sensor/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"presence": func(detected bool) string {
		if detected {
			return "DETECTED"
		}
		return "CLEAR"
	},
	"ms": func(v int64) string {
		if v == 0 {
			return "off"
		}
		return fmt.Sprintf("%d ms", v)
	},
	"rfc3339": func(t time.Time) string {
		if t.IsZero() {
			return "never"
		}
		return t.UTC().Format(time.RFC3339)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Presence Sensor</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.1em; margin-top: 1.5em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.detected { color: green; font-weight: bold; }
.clear { color: #888; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Presence Sensor</h1>

<table>
<tr><th>Presence</th><td class="{{if .Presence}}detected{{else}}clear{{end}}">{{presence .Presence}}</td></tr>
<tr><th>Last published value</th><td>{{.LastPublished}}</td></tr>
<tr><th>Last published at</th><td>{{rfc3339 .LastPublishedAt}}</td></tr>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
</table>

<h2>Cadence</h2>
<table>
<tr><th>Publish period</th><td>{{ms .PeriodMs}}</td></tr>
<tr><th>Armed interval</th><td>{{ms .IntervalMs}}</td></tr>
<tr><th>Fast publish period</th><td>{{ms .FastPeriodMs}}</td></tr>
<tr><th>Fast cadence divisor</th><td>{{.Cadence.FastCadencePeriodDivisor}}</td></tr>
<tr><th>Trigger delta up / down</th><td>{{.Cadence.TriggerDeltaUp}} / {{.Cadence.TriggerDeltaDown}}{{if .Cadence.TriggerTypePercentage}} (0.01%){{end}}</td></tr>
<tr><th>Min interval</th><td>{{.Cadence.MinIntervalMs}} ms</td></tr>
<tr><th>Window low / high</th><td>{{.Cadence.FastCadenceLow}} / {{.Cadence.FastCadenceHigh}}</td></tr>
</table>

<h2>Events</h2>
<table>
<tr><th>Rises</th><td>{{.Counts.Rises}}</td></tr>
<tr><th>Falls</th><td>{{.Counts.Falls}}</td></tr>
<tr><th>Published</th><td>{{.Counts.Published}}</td></tr>
<tr><th>Reported (GET)</th><td>{{.Counts.Reported}}</td></tr>
</table>

{{if .Network}}
<h2>Network</h2>
<table>
<tr><th>Status</th><td>{{.Network.Status}}</td></tr>
<tr><th>Type</th><td>{{.Network.Type}}</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>
<tr><th>Gateway</th><td>{{.Network.Gateway}}</td></tr>
{{if .Network.SSID}}<tr><th>Wifi</th><td>{{.Network.WifiStatus}} ({{.Network.SSID}})</td></tr>{{end}}
</table>
{{end}}

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("render status page: %v", err)
	}
}
