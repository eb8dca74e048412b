package apps

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/GriffinCanCode/TermDesk/internal/sdk"
)

var (
	sysLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(10)
	sysValueStyle = lipgloss.NewStyle().Bold(true)
)

type sysinfoTickMsg time.Time

type sysSnapshot struct {
	hostname string
	platform string
	uptime   time.Duration
	cpuPct   float64
	memUsed  uint64
	memTotal uint64
}

// sysinfo shows a periodically refreshed host, CPU, and memory overview.
type sysinfo struct {
	snap sysSnapshot
	err  error
}

func newSysInfo(sdk.Context) (sdk.Widget, error) {
	s := &sysinfo{}
	s.snap, s.err = readSnapshot()
	return s, nil
}

func readSnapshot() (sysSnapshot, error) {
	var snap sysSnapshot

	info, err := host.Info()
	if err != nil {
		return snap, err
	}
	snap.hostname = info.Hostname
	snap.platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	snap.uptime = time.Duration(info.Uptime) * time.Second

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		snap.cpuPct = pcts[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.memUsed = vm.Used
		snap.memTotal = vm.Total
	}
	return snap, nil
}

func sysinfoTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return sysinfoTickMsg(t)
	})
}

func (s *sysinfo) Init() tea.Cmd { return sysinfoTick() }

func (s *sysinfo) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(sysinfoTickMsg); ok {
		s.snap, s.err = readSnapshot()
		return s, sysinfoTick()
	}
	return s, nil
}

func (s *sysinfo) View() string {
	if s.err != nil {
		return "host info unavailable: " + s.err.Error()
	}
	row := func(label, value string) string {
		return sysLabelStyle.Render(label) + sysValueStyle.Render(value)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		row("host", s.snap.hostname),
		row("platform", s.snap.platform),
		row("uptime", s.snap.uptime.Truncate(time.Second).String()),
		row("cpu", fmt.Sprintf("%.1f%%", s.snap.cpuPct)),
		row("memory", fmt.Sprintf("%s / %s", formatBytes(s.snap.memUsed), formatBytes(s.snap.memTotal))),
	)
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
