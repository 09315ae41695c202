// Package observ provides the JSON-line event log and the in-process metrics
// registry used across the trading cycle.
package observ

import (
	"encoding/json"
	"os"
	"time"
)

var logOut = json.NewEncoder(os.Stdout)

// Log emits one structured event as a single JSON line. Fields in kv are
// merged with the timestamp and event name; kv may be nil.
func Log(event string, kv map[string]any) {
	line := make(map[string]any, len(kv)+2)
	for k, v := range kv {
		line[k] = v
	}
	line["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	line["event"] = event
	_ = logOut.Encode(line)
}
