package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	appLog "lumanotify/internal/log"
)

// Messenger delivers a text body to a single contact through macOS
// Messages.app, driven over AppleScript. iMessage is tried first; if the
// script exits non-zero (typically because the contact has no iMessage
// account), one SMS fallback is attempted. A timeout on either attempt
// ends delivery without further retries.
type Messenger struct {
	// Recipient is the phone number or iMessage handle to send to.
	Recipient string
	// Timeout bounds each osascript invocation.
	Timeout time.Duration
}

const imessageScript = `
tell application "Messages"
	set targetService to 1st account whose service type = iMessage
	set targetBuddy to participant "%s" of targetService
	send "%s" to targetBuddy
end tell
`

const smsScript = `
tell application "Messages"
	send "%s" to buddy "%s" of service "SMS"
end tell
`

// Send delivers body to the configured recipient. It returns nil only
// when one of the two channels confirmed a zero exit.
func (m *Messenger) Send(ctx context.Context, body string) error {
	phone := escapeAppleScript(m.Recipient)
	msg := escapeAppleScript(body)

	script := fmt.Sprintf(imessageScript, phone, msg)
	err := m.runScript(ctx, script)
	if err == nil {
		appLog.Info("iMessage sent")
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		// A timeout is a failure, not a fallback trigger.
		return fmt.Errorf("iMessage send aborted: %w", err)
	}

	appLog.Error("iMessage send failed, trying SMS fallback", err)

	script = fmt.Sprintf(smsScript, msg, phone)
	if err := m.runScript(ctx, script); err != nil {
		return fmt.Errorf("SMS fallback failed: %w", err)
	}
	appLog.Info("SMS sent")
	return nil
}

func (m *Messenger) runScript(ctx context.Context, script string) error {
	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// escapeAppleScript makes s safe inside an AppleScript double-quoted
// string literal.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
