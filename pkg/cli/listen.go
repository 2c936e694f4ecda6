package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/spf13/cobra"
	"github.com/wirecat/wirecat/pkg/cli/internal/output"
	"github.com/wirecat/wirecat/pkg/wsclient"
)

var listenFlags struct {
	connFlags
	count     int
	filter    string
	reconnect int
}

var listenCmd = &cobra.Command{
	Use:   "listen [url]",
	Short: "Stream incoming messages",
	Long: `Connect and print incoming messages until interrupted.

Messages can be filtered with an expression over the fields type
(the frame type as a string), text (the payload as text), size
(the payload length in bytes) and index (the zero-based arrival
position).

The url argument can be omitted when a profile or WIRECAT_URL supplies it.`,
	Example: `  # Stream everything
  wirecat listen ws://localhost:8080/feed

  # Stop after ten messages
  wirecat listen -n 10 ws://localhost:8080/feed

  # Only JSON text messages mentioning "error"
  wirecat listen --filter 'type == "text" && text contains "error"' ws://localhost:8080/feed

  # NDJSON output for piping into jq
  wirecat listen --json ws://localhost:8080/feed | jq .data`,
	Args: cobra.MaximumNArgs(1),
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	registerConnFlags(listenCmd, &listenFlags.connFlags)
	listenCmd.Flags().IntVarP(&listenFlags.count, "count", "n", 0, "Number of messages to receive before exiting (0 = unlimited)")
	listenCmd.Flags().StringVar(&listenFlags.filter, "filter", "", "Expression to select messages (e.g. 'text contains \"order\"')")
	listenCmd.Flags().IntVar(&listenFlags.reconnect, "reconnect", 0, "Reconnect up to N times with backoff when the server closes the connection")
}

// filterEnv is the expression environment a --filter program runs in.
func filterEnv(f wsclient.Frame, index int) map[string]any {
	return map[string]any{
		"type":  f.Type.String(),
		"text":  f.Text(),
		"size":  len(f.Payload),
		"index": index,
	}
}

// compileFilter compiles a --filter expression, typed against the
// frame environment and required to yield a boolean.
func compileFilter(src string) (*vm.Program, error) {
	program, err := expr.Compile(src, expr.Env(filterEnv(wsclient.Frame{}, 0)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", src, err)
	}
	return program, nil
}

// listenHandler prints matching frames and signals when --count is reached.
type listenHandler struct {
	wsclient.BaseHandler
	jsonOut  bool
	policy   *reconnectPolicy
	program  *vm.Program
	limit    int
	seen     int
	received int
	full     chan struct{}
}

func (h *listenHandler) HandleFrame(f wsclient.Frame, state any) wsclient.Result {
	h.policy.reset()
	if h.limit > 0 && h.received >= h.limit {
		// Limit already reached; the close handshake is in flight.
		return wsclient.Continue(state)
	}
	index := h.seen
	h.seen++
	if h.program != nil {
		out, err := expr.Run(h.program, filterEnv(f, index))
		if err != nil {
			output.Warn("filter: %v", err)
			return wsclient.Continue(state)
		}
		if keep, _ := out.(bool); !keep {
			return wsclient.Continue(state)
		}
	}
	printFrame(f, h.jsonOut)
	h.received++
	if h.limit > 0 && h.received == h.limit {
		close(h.full)
	}
	return wsclient.Continue(state)
}

func (h *listenHandler) HandleDisconnect(reason wsclient.CloseReason, state any) wsclient.DisconnectResult {
	return h.policy.next(reason, state)
}

func runListen(cmd *cobra.Command, args []string) error {
	log, closeLog, err := buildLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	var program *vm.Program
	if listenFlags.filter != "" {
		program, err = compileFilter(listenFlags.filter)
		if err != nil {
			return err
		}
	}

	target, opts, err := resolveTarget(cmd, argOrEmpty(args), &listenFlags.connFlags, log)
	if err != nil {
		return err
	}

	handler := &listenHandler{
		jsonOut: jsonOutput,
		policy:  newReconnectPolicy(listenFlags.reconnect),
		program: program,
		limit:   listenFlags.count,
		full:    make(chan struct{}),
	}
	client, err := wsclient.Start(target, handler, nil, opts)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if !jsonOutput {
		if listenFlags.count > 0 {
			fmt.Fprintf(os.Stderr, "Listening for %d messages on %s (Ctrl+C to stop)\n", listenFlags.count, client.URL())
		} else {
			fmt.Fprintf(os.Stderr, "Listening on %s (Ctrl+C to stop)\n", client.URL())
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
		fmt.Fprintln(os.Stderr, "\nDisconnecting...")
		_ = client.CloseNormal()
		return waitAndReport(client)

	case <-handler.full:
		if !jsonOutput {
			fmt.Fprintf(os.Stderr, "Received %d messages\n", handler.limit)
		}
		_ = client.CloseNormal()
		return waitAndReport(client)

	case <-client.Done():
		return client.Err()
	}
}
