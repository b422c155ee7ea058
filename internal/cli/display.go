// Package cli renders dashboard data for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/presets"
	"github.com/worldland/netstats/internal/pricing"
	"github.com/worldland/netstats/internal/providers"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
)

// Printer writes tables and fields to out
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// PrintHeader prints a section header
func (p *Printer) PrintHeader(title string) {
	fmt.Fprintf(p.out, "\n=== %s ===\n", title)
}

// PrintField prints a labeled field
func (p *Printer) PrintField(label, value string) {
	fmt.Fprintf(p.out, "  %-14s %s\n", label+":", value)
}

// PrintSuccess prints a success message
func (p *Printer) PrintSuccess(message string) {
	okColor.Fprintf(p.out, "\n%s\n", message)
}

// PrintWarning prints a warning
func (p *Printer) PrintWarning(message string) {
	warnColor.Fprintf(p.out, "\n%s\n", message)
}

// PrintError prints an error message
func (p *Printer) PrintError(message string) {
	errColor.Fprintf(p.out, "\nError: %s\n", message)
}

func (p *Printer) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(p.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func statusColors(online bool) tablewriter.Colors {
	if online {
		return tablewriter.Colors{tablewriter.Bold, tablewriter.FgGreenColor}
	}
	return tablewriter.Colors{tablewriter.Bold, tablewriter.FgRedColor}
}

// PrintProviders renders one page of providers
func (p *Printer) PrintProviders(page providers.Page[domain.ProviderRecord]) {
	p.PrintHeader(fmt.Sprintf("Providers (%d)", page.Total))
	if len(page.Items) == 0 {
		fmt.Fprintln(p.out, "  (no providers match the current filters)")
		return
	}

	table := p.table([]string{"NAME", "NODE ID", "STATUS", "CORES", "MEMORY", "STORAGE", "RUNTIMES", "EARNINGS"})
	for i := range page.Items {
		rec := &page.Items[i]
		props := rec.VMProperties()
		row := []string{
			truncate(rec.Name(), 24),
			shortID(rec.NodeID),
			onlineLabel(rec.Online),
			intProp(props, domain.PropCPUThreads),
			floatProp(props, domain.PropMemoryGiB, "GiB"),
			floatProp(props, domain.PropStorageGiB, "GiB"),
			strings.Join(runtimeNames(rec), ","),
			strconv.FormatFloat(rec.EarningsTotal, 'f', 2, 64),
		}
		colors := make([]tablewriter.Colors, len(row))
		colors[2] = statusColors(rec.Online)
		table.Rich(row, colors)
	}
	table.Render()
	p.printPager(page.Page, page.LastPage)
}

// PrintSummary renders the network aggregate
func (p *Printer) PrintSummary(s domain.NetworkSummary) {
	p.PrintHeader("Network")
	p.PrintField("Providers", fmt.Sprintf("%d (%d online, %d offline)", s.Total, s.Online, s.Offline))
	p.PrintField("Computing", strconv.Itoa(s.Computing))
	p.PrintField("Cores", strconv.Itoa(s.CPUThreads))
	p.PrintField("Memory", fmt.Sprintf("%.2f GiB", s.MemoryGiB))
	p.PrintField("Storage", fmt.Sprintf("%.2f GiB", s.StorageGiB))
	p.PrintField("GPUs", strconv.Itoa(s.GPUs))
	p.PrintField("Avg uptime", fmt.Sprintf("%.1f%%", s.AverageUptime))
}

// PrintNode renders a node and its pricing table
func (p *Printer) PrintNode(rec *domain.ProviderRecord) {
	p.PrintHeader("Node " + rec.Name())
	p.PrintField("Node ID", rec.NodeID)
	p.PrintField("Status", onlineLabel(rec.Online))
	p.PrintField("Version", rec.Version)
	p.PrintField("Wallet", rec.Wallet)
	if rec.IsMainnet() {
		p.PrintField("Network", domain.NetworkMainnet)
	} else {
		p.PrintField("Network", domain.NetworkTestnet)
	}
	p.PrintField("Uptime", fmt.Sprintf("%.1f%%", rec.Uptime))
	p.PrintPricing(pricing.Table(rec))
}

// PrintPricing renders a node's per-runtime pricing rows
func (p *Printer) PrintPricing(rows []pricing.RuntimePricing) {
	p.PrintHeader("Pricing")
	if len(rows) == 0 {
		fmt.Fprintln(p.out, "  (no runtimes offered)")
		return
	}
	table := p.table([]string{"RUNTIME", "CPU/H", "ENV/H", "START", "USD/H"})
	for _, r := range rows {
		table.Append([]string{
			r.Runtime,
			optPrice(r.CPUPerHour),
			optPrice(r.EnvPerHour),
			optPrice(r.StartPrice),
			strconv.FormatFloat(r.HourlyPriceUSD, 'f', -1, 64),
		})
	}
	table.Render()
}

// PrintNetworkPricing renders one page of the network-wide pricing table
func (p *Printer) PrintNetworkPricing(runtime string, page providers.Page[pricing.ProviderPricing]) {
	p.PrintHeader(fmt.Sprintf("Pricing: %s (%d providers)", runtime, page.Total))
	table := p.table([]string{"NAME", "NODE ID", "CPU/H", "ENV/H", "START", "USD/H"})
	for _, r := range page.Items {
		table.Append([]string{
			truncate(r.Name, 24),
			shortID(r.NodeID),
			optPrice(r.CPUPerHour),
			optPrice(r.EnvPerHour),
			optPrice(r.StartPrice),
			strconv.FormatFloat(r.HourlyPriceUSD, 'f', -1, 64),
		})
	}
	table.Render()
	p.printPager(page.Page, page.LastPage)
}

// PrintPresets lists presets, marking the active one
func (p *Printer) PrintPresets(list []presets.Preset, active string) {
	p.PrintHeader(fmt.Sprintf("Presets (%d)", len(list)))
	if len(list) == 0 {
		fmt.Fprintln(p.out, "  (no presets saved)")
		return
	}
	table := p.table([]string{"", "NAME", "FILTERS"})
	for _, pr := range list {
		mark := ""
		if pr.Name == active {
			mark = "*"
		}
		table.Append([]string{mark, pr.Name, describeCriteria(pr.Criteria)})
	}
	table.Render()
}

// PrintHealthcheck renders a healthcheck task
func (p *Printer) PrintHealthcheck(t *domain.HealthcheckTask) {
	p.PrintHeader("Healthcheck")
	p.PrintField("Task", t.TaskID)
	p.PrintField("Node", t.NodeID)
	switch t.Status {
	case domain.HealthcheckCompleted:
		p.PrintField("Status", okColor.Sprint(t.Status))
	case domain.HealthcheckFailed:
		p.PrintField("Status", errColor.Sprint(t.Status))
	default:
		p.PrintField("Status", warnColor.Sprint(t.Status))
	}
	if t.Detail != "" {
		p.PrintField("Detail", t.Detail)
	}
}

func (p *Printer) printPager(page, last int) {
	if last <= 1 {
		return
	}
	window := providers.PageWindow(page, last)
	parts := make([]string, len(window))
	for i, n := range window {
		if n == page {
			parts[i] = fmt.Sprintf("[%d]", n)
		} else {
			parts[i] = strconv.Itoa(n)
		}
	}
	fmt.Fprintf(p.out, "\n  page %s of %d\n", strings.Join(parts, " "), last)
}

// describeCriteria lists the set filters as key=value pairs
func describeCriteria(c domain.FilterCriteria) string {
	data, err := json.Marshal(c)
	if err != nil {
		return "?"
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return "?"
	}

	keys := make([]string, 0, len(m))
	for k, v := range m {
		if v == nil {
			continue
		}
		if list, ok := v.([]any); ok && len(list) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return "(none)"
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}

func onlineLabel(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}

func runtimeNames(rec *domain.ProviderRecord) []string {
	names := make([]string, 0, len(rec.Runtimes))
	for k := range rec.Runtimes {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func intProp(props domain.Properties, key string) string {
	if v, ok := props.Int(key); ok {
		return strconv.Itoa(v)
	}
	return "-"
}

func floatProp(props domain.Properties, key, unit string) string {
	if v, ok := props.Float(key); ok {
		return fmt.Sprintf("%.1f %s", v, unit)
	}
	return "-"
}

func optPrice(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func shortID(id string) string {
	if len(id) <= 14 {
		return id
	}
	return id[:8] + "..." + id[len(id)-4:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
