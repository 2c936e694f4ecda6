package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wirecat/wirecat/pkg/wsclient"
)

var connectFlags struct {
	connFlags
	reconnect int
}

var connectCmd = &cobra.Command{
	Use:   "connect [url]",
	Short: "Interactive websocket session (REPL mode)",
	Long: `Start an interactive websocket session.

Type messages and press Enter to send. Incoming messages are printed as
they arrive. Ctrl+C performs a clean close handshake before exiting.

The url argument can be omitted when a profile or WIRECAT_URL supplies it.`,
	Example: `  # Connect to an endpoint
  wirecat connect ws://localhost:8080/ws

  # Connect with an auth header
  wirecat connect -H "Authorization:Bearer token" wss://api.example.com/ws

  # Connect using the default profile
  wirecat connect

  # Keep the session alive across server restarts
  wirecat connect --reconnect 5 ws://localhost:8080/ws`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	registerConnFlags(connectCmd, &connectFlags.connFlags)
	connectCmd.Flags().IntVar(&connectFlags.reconnect, "reconnect", 0, "Reconnect up to N times with backoff when the server closes the connection")
}

// replHandler prints incoming frames and delegates the reconnect
// decision to the policy.
type replHandler struct {
	wsclient.BaseHandler
	jsonOut bool
	policy  *reconnectPolicy
}

func (h *replHandler) HandleFrame(f wsclient.Frame, state any) wsclient.Result {
	h.policy.reset()
	printFrame(f, h.jsonOut)
	return wsclient.Continue(state)
}

func (h *replHandler) HandleDisconnect(reason wsclient.CloseReason, state any) wsclient.DisconnectResult {
	return h.policy.next(reason, state)
}

func (h *replHandler) Terminate(reason wsclient.CloseReason, _ any) {
	if !h.jsonOut {
		fmt.Fprintf(os.Stderr, "Connection closed: %s\n", reason)
	}
}

func runConnect(cmd *cobra.Command, args []string) error {
	log, closeLog, err := buildLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	target, opts, err := resolveTarget(cmd, argOrEmpty(args), &connectFlags.connFlags, log)
	if err != nil {
		return err
	}

	handler := &replHandler{jsonOut: jsonOutput, policy: newReconnectPolicy(connectFlags.reconnect)}
	client, err := wsclient.Start(target, handler, nil, opts)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	if !jsonOutput {
		if sp := client.Subprotocol(); sp != "" {
			fmt.Fprintf(os.Stderr, "Connected to %s (subprotocol: %s)\n", client.URL(), sp)
		} else {
			fmt.Fprintf(os.Stderr, "Connected to %s\n", client.URL())
		}
		fmt.Fprintln(os.Stderr, "Type messages and press Enter to send. Ctrl+C to exit.")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Reading stdin in a goroutine keeps the select below responsive to
	// incoming close handshakes and signals.
	inputChan := make(chan string, 10)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			inputChan <- scanner.Text()
		}
		close(inputChan)
	}()

	for {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nDisconnecting...")
			_ = client.CloseNormal()
			return waitAndReport(client)

		case <-client.Done():
			return client.Err()

		case line, ok := <-inputChan:
			if !ok {
				// stdin EOF: complete the close handshake and exit
				_ = client.CloseNormal()
				return waitAndReport(client)
			}
			if line == "" {
				continue
			}
			if err := client.SendText(line); err != nil {
				if errors.Is(err, wsclient.ErrTerminated) {
					return waitAndReport(client)
				}
				return fmt.Errorf("send error: %w", err)
			}
			printSent(wsclient.NewTextFrame(line), jsonOutput)
		}
	}
}

// waitAndReport blocks until the client terminates and returns its final
// error. A clean close yields nil, so the process exits 0.
func waitAndReport(client *wsclient.Client) error {
	<-client.Done()
	return client.Err()
}
