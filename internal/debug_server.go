package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Sender    string
	Text      string
	Timestamp string
}

type StatsProvider func() map[string]any

type PageData struct {
	Key   string
	Items []InspectRow
	Stats map[string]any
}

// StartDebugServer exposes the shared message log and the client counters on
// a local HTTP page. Debug tooling only, never started unless DEBUG_PORT is
// set.
func StartDebugServer(db *badger.DB, port int, logKey string, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			key = logKey
		}

		data := PageData{
			Key:   key,
			Stats: make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			item, err := txn.Get([]byte(key))
			if err != nil {
				return nil
			}
			return item.Value(func(val []byte) error {
				data.Items = decodeRows(val)
				return nil
			})
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("localhost:%d", port), mux)
	}()
}

func decodeRows(val []byte) []InspectRow {
	var rows []InspectRow
	if err := json.Unmarshal(val, &rows); err != nil {
		return []InspectRow{{Text: fmt.Sprintf("unreadable log (%d bytes)", len(val))}}
	}
	return rows
}
