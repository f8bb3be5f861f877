package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/prettymuchbryce/treewatch/internal/config"
	"github.com/prettymuchbryce/treewatch/internal/ipc"
	"github.com/prettymuchbryce/treewatch/internal/report"
	"github.com/spf13/cobra"
)

var (
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	boldStyle      = lipgloss.NewStyle().Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	labelStyle     = lipgloss.NewStyle().Width(12)
	boxStyle       = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("2")).
			Padding(0, 4)
)

var statusTree bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print status information (running, root, watched entries, trigger)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(client *ipc.Client) error {
			status, err := client.Status(statusTree)
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			printStatus(status)
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusTree, "tree", "t", false, "print every watched entry")
	rootCmd.AddCommand(statusCmd)
}

func printStatus(status *ipc.StatusData) {
	if config.IsDefaultConfig(status.ConfigPath) {
		welcome := "👋 Welcome to treewatch\n\n" + "1. Set root in the config file at the path below.\n" +
			"2. Apply it with " + highlightStyle.Render("treewatch reload") + "."
		fmt.Println(boxStyle.Render(welcome))
	}

	var statusValue string
	switch {
	case !status.Enabled:
		statusValue = "🔴 disabled (run " + boldStyle.Render("treewatch enable") + " to resume)"
	case status.Watching:
		statusValue = "🟢 watching"
	default:
		statusValue = "⚠️ idle (root missing or not configured)"
	}

	configValue := dimStyle.Render(status.ConfigPath)
	if !status.ConfigValid {
		configValue += "\n" + strings.Repeat(" ", 12) + errorStyle.Render("invalid: "+status.ConfigError)
	}

	rootValue := dimStyle.Render("none")
	if status.Root != "" {
		rootValue = status.Root
	}

	watchingValue := dimStyle.Render("none")
	if status.Watching {
		watchingValue = fmt.Sprintf("%d entries %s", status.WatchCount, dimStyle.Render("("+status.Backend+")"))
	}

	fmt.Println(labelStyle.Render("status") + statusValue)
	fmt.Println(labelStyle.Render("config") + configValue)
	fmt.Println(labelStyle.Render("root") + rootValue)
	fmt.Println(labelStyle.Render("watching") + watchingValue)
	if len(status.IgnoreFiles)+len(status.IgnoreDirs) > 0 {
		fmt.Println(labelStyle.Render("ignoring") + dimStyle.Render(strings.Join(append(append([]string(nil), status.IgnoreFiles...), status.IgnoreDirs...), "  ")))
	}
	if t := status.Trigger; t != nil {
		fmt.Println(labelStyle.Render("trigger") + t.Command)
		if t.LastRunAt != nil && !t.LastRunAt.IsZero() {
			line := fmt.Sprintf("  last run: %s (%s, %d runs", formatTimeAgo(*t.LastRunAt), formatDuration(*t.LastDuration), t.Runs)
			if t.Failures > 0 {
				line += fmt.Sprintf(", %d failed", t.Failures)
			}
			line += ")"
			fmt.Println(dimStyle.Render(line))
			if t.LastError != "" {
				fmt.Println("  " + errorStyle.Render(t.LastError))
			}
		}
	}

	if len(status.Entries) > 0 {
		fmt.Println()
		fmt.Print(report.RenderTree(status.Root, status.Entries))
	}
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
}
