// Package launch hands article URLs to the platform browser.
package launch

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pders01/shelf/internal/config"
	"github.com/pders01/shelf/internal/debuglog"
)

type Launcher struct {
	command string
	args    []string
}

// NewLauncher uses cfg.Open.Command, which may carry extra arguments
// ("firefox --new-tab"). An empty command falls back to the first opener
// found on PATH.
func NewLauncher(cfg *config.Config) *Launcher {
	fields := strings.Fields(cfg.Open.Command)
	if len(fields) == 0 {
		fields = []string{findCommand(defaultOpeners()...)}
	}
	return &Launcher{command: fields[0], args: fields[1:]}
}

func (l *Launcher) Command() string {
	return l.command
}

// Open starts the opener detached and returns once it has launched.
func (l *Launcher) Open(url string) error {
	if strings.TrimSpace(url) == "" {
		return fmt.Errorf("no URL to open")
	}
	if l.command == "" {
		return fmt.Errorf("no application found to open URL")
	}

	cmd := l.buildCommand(url)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", l.command, err)
	}
	debuglog.WithFields(map[string]any{"command": l.command, "url": url}).Debugf("opened in browser")

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

func (l *Launcher) buildCommand(url string) *exec.Cmd {
	// start is a cmd.exe builtin, and its first quoted argument is a title.
	if l.command == "start" && runtime.GOOS == "windows" {
		return exec.Command("cmd", append([]string{"/c", "start", ""}, append(l.args, url)...)...)
	}
	return exec.Command(l.command, append(append([]string{}, l.args...), url)...)
}

func defaultOpeners() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open"}
	case "windows":
		return []string{"start"}
	default:
		return []string{"xdg-open", "sensible-browser", "x-www-browser", "firefox"}
	}
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if cmd == "start" && runtime.GOOS == "windows" {
			return cmd
		}
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
