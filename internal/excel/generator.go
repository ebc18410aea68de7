package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/pestcare-visits/internal/model"
)

const (
	summarySheet    = "Summary"
	unassignedGroup = "Unassigned"
	maxSheetName    = 31
)

// Generator renders a month schedule as a workbook: one summary sheet with a
// row per calendar day, then one sheet per technician.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

type technicianGroup struct {
	Name   string
	Visits []model.VisitRecord
}

func (g *Generator) Generate(month model.MonthSchedule) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := g.writeSummary(file, summarySheet, month); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, group := range groupByTechnician(month) {
		sheetName := buildSheetName(group.Name, usedNames)
		usedNames[sheetName] = struct{}{}

		if _, err := file.NewSheet(sheetName); err != nil {
			return nil, err
		}
		if err := g.writeDetail(file, sheetName, month, group); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, month model.MonthSchedule) error {
	counts := countByStatus(month)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Month")
	set("B1", month.Month.Format("January 2006"))
	set("A2", "Total visits")
	set("B2", counts.total)
	set("A3", "Completed")
	set("B3", counts.byStatus[model.VisitStatusCompleted])
	set("A4", "Pending")
	set("B4", counts.byStatus[model.VisitStatusPending])
	set("A5", "Missed")
	set("B5", counts.byStatus[model.VisitStatusMissed])
	set("A6", "Canceled")
	set("B6", counts.byStatus[model.VisitStatusCanceled])

	tableRow := 8
	headers := []string{"Date", "Weekday", "Visits", "Clients"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, day := range month.Days {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), formatDate(day.Date))
		set(fmt.Sprintf("B%d", row), day.Date.Weekday().String())
		set(fmt.Sprintf("C%d", row), len(day.Visits))
		set(fmt.Sprintf("D%d", row), clientList(day.Visits))
	}

	_ = file.SetColWidth(sheet, "A", "A", 16)
	_ = file.SetColWidth(sheet, "B", "C", 12)
	_ = file.SetColWidth(sheet, "D", "D", 60)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, month model.MonthSchedule, group technicianGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Technician")
	set("B1", group.Name)
	set("A2", "Month")
	set("B2", month.Month.Format("January 2006"))
	set("A3", "Visits")
	set("B3", len(group.Visits))

	tableRow := 5
	headers := []string{
		"Date",
		"Visit",
		"Client",
		"Status",
		"Pest type",
		"Chemicals",
		"Completed at",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, visit := range group.Visits {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), formatDate(visit.Date))
		set(fmt.Sprintf("B%d", row), visit.Number)
		set(fmt.Sprintf("C%d", row), visit.ClientName)
		set(fmt.Sprintf("D%d", row), string(visit.EffectiveStatus))
		set(fmt.Sprintf("E%d", row), formatString(visit.PestType))
		set(fmt.Sprintf("F%d", row), formatString(visit.Chemicals))
		set(fmt.Sprintf("G%d", row), formatDateTime(visit.CompletedAt))
	}

	_ = file.SetColWidth(sheet, "A", "B", 14)
	_ = file.SetColWidth(sheet, "C", "C", 36)
	_ = file.SetColWidth(sheet, "D", "D", 12)
	_ = file.SetColWidth(sheet, "E", "F", 24)
	_ = file.SetColWidth(sheet, "G", "G", 20)
	return nil
}

type statusCounts struct {
	total    int
	byStatus map[model.VisitStatus]int
}

func countByStatus(month model.MonthSchedule) statusCounts {
	counts := statusCounts{byStatus: make(map[model.VisitStatus]int)}
	for _, day := range month.Days {
		for _, visit := range day.Visits {
			counts.total++
			counts.byStatus[visit.EffectiveStatus]++
		}
	}
	return counts
}

// groupByTechnician keeps the day order of visits inside each group. Groups
// are sorted by name with unassigned visits last.
func groupByTechnician(month model.MonthSchedule) []technicianGroup {
	index := make(map[string]int)
	var groups []technicianGroup
	for _, day := range month.Days {
		for _, visit := range day.Visits {
			name := strings.TrimSpace(visit.TechnicianName)
			if visit.TechnicianID == nil {
				name = unassignedGroup
			} else if name == "" {
				name = visit.TechnicianID.String()
			}
			pos, ok := index[name]
			if !ok {
				groups = append(groups, technicianGroup{Name: name})
				pos = len(groups) - 1
				index[name] = pos
			}
			groups[pos].Visits = append(groups[pos].Visits, visit)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if (groups[i].Name == unassignedGroup) != (groups[j].Name == unassignedGroup) {
			return groups[j].Name == unassignedGroup
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

func clientList(visits []model.VisitRecord) string {
	names := make([]string, 0, len(visits))
	for _, visit := range visits {
		if visit.ClientName != "" {
			names = append(names, visit.ClientName)
		}
	}
	return strings.Join(names, ", ")
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > maxSheetName {
			trimmed = trimmed[:maxSheetName-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}
	return value
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04")
}

func formatString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
