package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wirecat/wirecat/pkg/util"
	"github.com/wirecat/wirecat/pkg/wsclient"
)

var sendFlags struct {
	connFlags
	binary bool
	wait   time.Duration
}

var sendCmd = &cobra.Command{
	Use:   "send [url] <message>",
	Short: "Send a single message and exit",
	Long: `Send one message to a websocket endpoint, then close cleanly.

With --wait, replies arriving within the window are printed before the
close handshake starts. A message of @filename sends the file contents.

The url argument can be omitted when a profile or WIRECAT_URL supplies it.`,
	Example: `  # Send a simple message
  wirecat send ws://localhost:8080/ws "hello"

  # Send JSON and print replies for two seconds
  wirecat send --wait 2s ws://localhost:8080/ws '{"action":"ping"}'

  # Send a file as a binary frame
  wirecat send --binary ws://localhost:8080/ws @payload.bin

  # Send using the default profile
  wirecat send "hello"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	registerConnFlags(sendCmd, &sendFlags.connFlags)
	sendCmd.Flags().BoolVar(&sendFlags.binary, "binary", false, "Send the message as a binary frame")
	sendCmd.Flags().DurationVar(&sendFlags.wait, "wait", 0, "Print replies for this long before closing")
}

// sendHandler prints any replies that arrive during the --wait window.
type sendHandler struct {
	wsclient.BaseHandler
	jsonOut bool
}

func (h *sendHandler) HandleFrame(f wsclient.Frame, state any) wsclient.Result {
	printFrame(f, h.jsonOut)
	return wsclient.Continue(state)
}

func runSend(cmd *cobra.Command, args []string) error {
	log, closeLog, err := buildLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	var urlArg, message string
	if len(args) == 2 {
		urlArg, message = args[0], args[1]
	} else {
		message = args[0]
		if strings.HasPrefix(message, "ws://") || strings.HasPrefix(message, "wss://") {
			return fmt.Errorf("message is required")
		}
	}

	payload := []byte(message)
	if strings.HasPrefix(message, "@") {
		payload, err = os.ReadFile(message[1:])
		if err != nil {
			return fmt.Errorf("failed to read message file: %w", err)
		}
	}

	target, opts, err := resolveTarget(cmd, urlArg, &sendFlags.connFlags, log)
	if err != nil {
		return err
	}

	handler := &sendHandler{jsonOut: jsonOutput}
	client, err := wsclient.Start(target, handler, nil, opts)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	frame := wsclient.NewTextFrame(string(payload))
	if sendFlags.binary {
		frame = wsclient.NewBinaryFrame(payload)
	}
	if err := client.SendFrame(frame); err != nil {
		_ = client.CloseNormal()
		<-client.Done()
		return fmt.Errorf("send error: %w", err)
	}
	if jsonOutput {
		printSent(frame, true)
	}

	if sendFlags.wait > 0 {
		select {
		case <-time.After(sendFlags.wait):
		case <-client.Done():
			return client.Err()
		}
	}

	_ = client.CloseNormal()
	if err := waitAndReport(client); err != nil {
		return err
	}

	printResult(map[string]any{
		"success": true,
		"url":     target,
		"type":    frame.Type.String(),
		"size":    len(payload),
	}, func() {
		fmt.Printf("Sent to %s: %s\n", target, util.Preview(payload, 256))
	})
	return nil
}
