package internal

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/shirou/gopsutil/process"
)

const inspectPage = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Badger inspector</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; }
td, th { padding: 2px 10px; border-bottom: 1px solid #ddd; text-align: left; }
.swatch { display: inline-block; width: 1em; height: 1em; vertical-align: middle; }
</style></head>
<body>
{{with .Process}}<p>pid {{.PID}} ({{.Status}}) cpu {{printf "%.1f" .CPUPercent}}% rss {{printf "%.1f" .RSSMiB}} MiB</p>{{end}}
<form><input name="prefix" value="{{.Prefix}}"> <button>Scan</button></form>
<p>{{len .Items}} keys</p>
<table>
<tr><th>Key</th><th>Type</th><th>Time</th><th>Entity</th><th>Colour</th><th>Detail</th></tr>
{{range .Items}}<tr>
<td>{{.Key}}</td><td>{{.Type}}</td><td>{{.Timestamp}}</td><td>{{.EntityID}}</td>
<td>{{if .Colour}}<span class="swatch" style="background: {{.Colour}}"></span>{{end}}</td>
<td>{{.Detail}}</td>
</tr>{{end}}
</table>
</body>
</html>`

var inspectTemplate = template.Must(template.New("inspect").Parse(inspectPage))

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Colour    string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow

type PageData struct {
	Prefix  string
	Items   []InspectRow
	Process *ProcessStats
}

// ProcessStats describes the server process hosting the store.
type ProcessStats struct {
	PID        int32
	Status     string
	CPUPercent float64
	RSSMiB     float64
}

// SelfStats reads memory, CPU and OS status of p.
func SelfStats(p *process.Process) (ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("memory info: %w", err)
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("cpu percent: %w", err)
	}
	status, err := p.Status()
	if err != nil {
		return ProcessStats{}, fmt.Errorf("status: %w", err)
	}
	return ProcessStats{
		PID:        p.Pid,
		Status:     status,
		CPUPercent: cpuPercent,
		RSSMiB:     float64(memInfo.RSS) / (1 << 20),
	}, nil
}

// InspectHandler renders the keys under ?prefix= as an HTML table, headed by the stats of the
// current process when they can be read. It is read-only.
func InspectHandler(db *badger.DB, mapper RowMapper, defaultPrefix string, maxRows int) http.Handler {
	if mapper == nil {
		mapper = DefaultMapper
	}
	self, selfErr := process.NewProcess(int32(os.Getpid()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = defaultPrefix
		}
		data := PageData{Prefix: prefix}
		if selfErr == nil {
			if stats, err := SelfStats(self); err == nil {
				data.Process = &stats
			}
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				if maxRows > 0 && len(data.Items) == maxRows {
					break
				}
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = inspectTemplate.Execute(w, data)
	})
}

// DefaultMapper shows the raw key and value size.
func DefaultMapper(key string, val []byte) InspectRow {
	return InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}
}

// MessageMapper decodes "msg:{nanos}:{uuid}" entries and their JSON value.
func MessageMapper(key string, val []byte) InspectRow {
	row := DefaultMapper(key, val)
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || parts[0] != "msg" {
		if strings.HasPrefix(key, "idx:") {
			row.Type = "INDEX"
			row.Detail = string(val)
		}
		return row
	}
	row.Type = "MESSAGE"
	if nanos, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
		row.Timestamp = time.Unix(0, nanos).UTC().Format(time.DateTime)
	}
	row.EntityID = parts[2]
	if len(row.EntityID) > 8 {
		row.EntityID = row.EntityID[:8]
	}

	var stored struct {
		Content   string `json:"content"`
		Recipient string `json:"recipient"`
		CardColor string `json:"cardColor"`
	}
	if err := json.Unmarshal(val, &stored); err != nil {
		row.Detail = "Error: unmarshal failed"
		return row
	}
	row.Colour = stored.CardColor
	row.Detail = "To " + stored.Recipient + ": " + stored.Content
	return row
}
