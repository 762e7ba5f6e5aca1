package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"coursepath/internal/domain/audit"
	"coursepath/internal/domain/lifecycle"
	"coursepath/internal/dto"
	"coursepath/pkg/database"
)

var (
	title   = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	bad     = color.New(color.FgRed).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
	headers = map[string][]string{
		"audit": {"方案 / 要求组", "已修", "在修", "要求", "课程数", "完成度"},
		"plan":  {"学期", "状态", "课程代码", "课程名称", "学分", "先修"},
	}
)

func newTable(w io.Writer, kind string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers[kind])
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// renderAudit 打印合并进度、各方案要求组树与警告
func renderAudit(w io.Writer, res *dto.AuditResponse) {
	title.Fprintf(w, "\n学位审计 %s（%s）\n", res.StudentID, res.GeneratedAt)

	table := newTable(w, "audit")
	table.Append(progressRow("合计", res.Progress))
	for _, pa := range res.Programs {
		name := fmt.Sprintf("%s [%s]", pa.Name, pa.Type)
		if pa.IsPrimary {
			name += " *"
		}
		table.Append(progressRow(name, pa.Progress))
		var walk func(bs []*audit.Bucket, depth int)
		walk = func(bs []*audit.Bucket, depth int) {
			for _, b := range bs {
				table.Append(progressRow(strings.Repeat("  ", depth+1)+b.Name, b.Progress))
				walk(b.Children, depth+1)
			}
		}
		walk(pa.Buckets, 0)
	}
	table.Render()

	if len(res.Unassigned) > 0 {
		codes := make([]string, 0, len(res.Unassigned))
		for _, c := range res.Unassigned {
			codes = append(codes, c.Code)
		}
		fmt.Fprintf(w, "%s %s\n", faint("未计入任何要求组:"), strings.Join(codes, ", "))
	}
	for _, wn := range res.Warnings {
		fmt.Fprintf(w, "%s %s\n", warn("["+wn.Type+"]"), wn.Message)
	}
}

func progressRow(name string, p audit.Progress) []string {
	courses := strconv.Itoa(p.CoursesDone)
	if p.MinCourses > 0 {
		courses += "/" + strconv.Itoa(p.MinCourses)
	}
	pct := fmt.Sprintf("%d%%", p.Percent)
	switch {
	case p.Satisfied || p.Percent >= 100:
		pct = good(pct)
	case p.Percent == 0:
		pct = bad(pct)
	}
	return []string{
		name,
		strconv.Itoa(p.CreditsDone),
		strconv.Itoa(p.CreditsInProgress),
		strconv.Itoa(p.CreditsRequired),
		courses,
		pct,
	}
}

// renderPlan 每学期若干行课程，学期末附合计行
func renderPlan(w io.Writer, plan *dto.PlanResponse) {
	name := plan.Name
	if plan.IsDefault {
		name += "（默认）"
	}
	title.Fprintf(w, "\n学习计划 %s\n", name)

	table := newTable(w, "plan")
	for _, sem := range plan.Semesters {
		status := sem.Status
		if sem.IsLocked {
			status += "（锁定）"
		}
		for i, e := range sem.Entries {
			label, st := "", ""
			if i == 0 {
				label, st = sem.Label, status
			}
			prereq := good("满足")
			if !e.PrereqsMet {
				prereq = bad("未满足")
			}
			table.Append([]string{label, st, e.Code, e.Title, strconv.Itoa(e.Credits), prereq})
		}
		credits := strconv.Itoa(sem.Credits)
		if sem.CreditLevel == string(lifecycle.CreditOverload) {
			credits = warn(credits)
		}
		table.Append([]string{"", "", "", faint("学期合计"), credits, sem.Warning})
	}
	table.SetFooter([]string{"", "", "", "总计", strconv.Itoa(plan.TotalCredits), ""})
	table.Render()
}

// printMigrationStatus 打印当前 schema 版本
func printMigrationStatus(w io.Writer, st database.MigrationStatus) {
	switch {
	case st.Empty:
		fmt.Fprintln(w, warn("尚未执行任何迁移"))
	case st.Dirty:
		fmt.Fprintln(w, bad(fmt.Sprintf("schema 版本 %d（dirty，需人工修复）", st.Version)))
	default:
		fmt.Fprintln(w, good(fmt.Sprintf("schema 版本 %d", st.Version)))
	}
}
