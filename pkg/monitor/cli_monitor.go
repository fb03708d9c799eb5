package monitor

import (
	"fmt"
	"io"
	"os"
)

// CLIMonitor prints every message crossing the gateway to the terminal,
// one line per turn, so a single pane shows the traffic of all channels.
type CLIMonitor struct {
	writer io.Writer
}

// NewCLIMonitor creates a monitor writing to stdout.
func NewCLIMonitor() *CLIMonitor {
	return &CLIMonitor{writer: os.Stdout}
}

// Start prints the monitor banner.
func (m *CLIMonitor) Start() error {
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, "💬 Monitor active - conversation traffic from all channels appears here")
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	return nil
}

// Stop implements Monitor. Nothing to release.
func (m *CLIMonitor) Stop() error {
	return nil
}

// OnMessage prints one observed message with a dimmed timestamp. User
// turns carry their channel and username; assistant turns are tagged [AI].
func (m *CLIMonitor) OnMessage(msg MonitorMessage) {
	ts := msg.Timestamp.Format("2006-01-02 15:04:05")

	line := fmt.Sprintf("[%s/%s] %s", msg.ChannelID, msg.Username, msg.Content)
	if msg.MessageType == "ASSISTANT" {
		line = "[AI] " + msg.Content
	}

	fmt.Fprintf(m.writer, "\033[90m[%s]\033[0m %s\n", ts, line)
}
