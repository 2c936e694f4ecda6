package cli

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/wirecat/wirecat/pkg/cli/internal/output"
	"github.com/wirecat/wirecat/pkg/util"
	"github.com/wirecat/wirecat/pkg/wsclient"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to stdout. Human-readable prose (progress messages, hints) must go to stderr
// or be omitted entirely. textFn is called only in text mode.
func printResult(data any, textFn func()) {
	if jsonOutput {
		_ = output.JSON(data)
		return
	}
	textFn()
}

// printFrame renders an incoming data frame on stdout. In JSON mode each
// frame is one NDJSON line so streams can be piped into jq.
func printFrame(f wsclient.Frame, jsonOut bool) {
	if jsonOut {
		_ = output.NDJSON(frameRecord(f, "received"))
		return
	}
	fmt.Printf("< %s\n", util.Preview(f.Payload, 0))
}

// printSent echoes an outgoing message in the same shape printFrame uses.
func printSent(f wsclient.Frame, jsonOut bool) {
	if jsonOut {
		_ = output.NDJSON(frameRecord(f, "sent"))
		return
	}
	fmt.Printf("> %s\n", util.Preview(f.Payload, 0))
}

// frameRecord builds the JSON record for one frame. Binary payloads are
// base64-encoded so the record stays valid JSON.
func frameRecord(f wsclient.Frame, direction string) map[string]any {
	rec := map[string]any{
		"direction": direction,
		"type":      f.Type.String(),
		"size":      len(f.Payload),
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if f.Type == wsclient.FrameBinary {
		rec["data"] = base64.StdEncoding.EncodeToString(f.Payload)
		rec["encoding"] = "base64"
	} else {
		rec["data"] = string(f.Payload)
	}
	return rec
}
