package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coursepath/internal/domain/audit"
	"coursepath/internal/dto"
)

// ExportService 导出业务接口
//
// 导出以内存缓冲返回，由 Handler 层设置响应头后写出。
type ExportService interface {
	// ExportPlanXLSX 导出计划与审计为 Excel，含 "Plan" 与 "Audit" 两个 Sheet
	ExportPlanXLSX(ctx context.Context, studentID, draftID string) (*bytes.Buffer, string, error)
	// ExportPlanICS 导出为 iCalendar，每个有学年学期的学期一个全天事件
	ExportPlanICS(ctx context.Context, studentID, draftID string) ([]byte, string, error)
}

type exportService struct {
	plan   PlanService
	audit  AuditService
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(plan PlanService, audit AuditService, logger *zap.Logger) ExportService {
	return &exportService{plan: plan, audit: audit, logger: logger}
}

const (
	sheetPlan  = "Plan"
	sheetAudit = "Audit"
)

// ═══════════════════════════════════════════════════════════
// ExportPlanXLSX
// ═══════════════════════════════════════════════════════════
//
// Plan:  | 学期 | 学年学期 | 课程代码 | 课程名称 | 学分 | 状态 | 先修 |
// Audit: | 方案 | 要求组 | 已修学分 | 在修学分 | 要求学分 | 完成度 |

func (s *exportService) ExportPlanXLSX(ctx context.Context, studentID, draftID string) (*bytes.Buffer, string, error) {
	// 计划与审计互不依赖，并行读取
	var (
		plan   *dto.PlanResponse
		result *dto.AuditResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		plan, err = s.plan.GetPlan(gctx, studentID, draftID)
		return err
	})
	g.Go(func() (err error) {
		result, err = s.audit.RunAudit(gctx, studentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(sheetPlan)
	f.SetActiveSheet(idx)
	f.NewSheet(sheetAudit)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	writePlanSheet(f, plan, headerStyle)
	writeAuditSheet(f, result, headerStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, "", ErrExportFailed
	}

	filename := fmt.Sprintf("学习计划_%s.xlsx", plan.Name)
	return buf, filename, nil
}

func writePlanSheet(f *excelize.File, plan *dto.PlanResponse, headerStyle int) {
	headers := []string{"学期", "学年学期", "课程代码", "课程名称", "学分", "状态", "先修"}
	widths := []float64{8, 16, 14, 36, 8, 12, 10}
	writeHeader(f, sheetPlan, headers, widths, headerStyle)

	row := 2
	for _, sem := range plan.Semesters {
		for _, e := range sem.Entries {
			prereq := "未满足"
			if e.PrereqsMet {
				prereq = "满足"
			}
			values := []interface{}{sem.Number, sem.Label, e.Code, e.Title, e.Credits, e.Status, prereq}
			for i, v := range values {
				f.SetCellValue(sheetPlan, cell(colName(i), row), v)
			}
			row++
		}
		if len(sem.Entries) > 0 {
			f.SetCellValue(sheetPlan, cell(colName(3), row), "学期合计")
			f.SetCellValue(sheetPlan, cell(colName(4), row), sem.Credits)
			if sem.Warning != "" {
				f.SetCellValue(sheetPlan, cell(colName(5), row), sem.Warning)
			}
			row++
		}
	}
	f.SetCellValue(sheetPlan, cell(colName(3), row), "总计")
	f.SetCellValue(sheetPlan, cell(colName(4), row), plan.TotalCredits)
}

func writeAuditSheet(f *excelize.File, result *dto.AuditResponse, headerStyle int) {
	headers := []string{"方案", "要求组", "已修学分", "在修学分", "要求学分", "完成度"}
	widths := []float64{24, 32, 10, 10, 10, 10}
	writeHeader(f, sheetAudit, headers, widths, headerStyle)

	row := 2
	write := func(program, bucket string, p audit.Progress) {
		values := []interface{}{program, bucket, p.CreditsDone, p.CreditsInProgress, p.CreditsRequired, fmt.Sprintf("%d%%", p.Percent)}
		for i, v := range values {
			f.SetCellValue(sheetAudit, cell(colName(i), row), v)
		}
		row++
	}

	write("合计", "", result.Progress)
	for _, pa := range result.Programs {
		write(pa.Name, "", pa.Progress)
		var walk func(bs []*audit.Bucket, depth int)
		walk = func(bs []*audit.Bucket, depth int) {
			for _, b := range bs {
				write("", strings.Repeat("  ", depth)+b.Name, b.Progress)
				walk(b.Children, depth+1)
			}
		}
		walk(pa.Buckets, 0)
	}
}

func writeHeader(f *excelize.File, sheet string, headers []string, widths []float64, style int) {
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheet, col, col, widths[i])
		f.SetCellValue(sheet, cell(col, 1), h)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), style)
}

// ═══════════════════════════════════════════════════════════
// ExportPlanICS
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportPlanICS(ctx context.Context, studentID, draftID string) ([]byte, string, error) {
	plan, err := s.plan.GetPlan(ctx, studentID, draftID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//coursepath//plan export//ZH")
	cal.SetName(plan.Name)

	now := time.Now().UTC()
	for _, sem := range plan.Semesters {
		start, end, ok := termRange(sem.Term, sem.Year)
		if !ok {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("%s-%d@coursepath", plan.DraftID, sem.Number))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(start)
		event.SetAllDayEndAt(end)
		event.SetSummary(fmt.Sprintf("%s（%d 学分）", sem.Label, sem.Credits))

		lines := make([]string, 0, len(sem.Entries))
		for _, e := range sem.Entries {
			lines = append(lines, fmt.Sprintf("%s %s (%d) %s", e.Code, e.Title, e.Credits, e.Status))
		}
		event.SetDescription(strings.Join(lines, "\n"))
	}

	filename := fmt.Sprintf("学习计划_%s.ics", plan.Name)
	return []byte(cal.Serialize()), filename, nil
}

// termRange 学期的起止日期（全天事件，结束日不含）
func termRange(term string, year int) (time.Time, time.Time, bool) {
	if year <= 0 {
		return time.Time{}, time.Time{}, false
	}
	date := func(m time.Month, d int) time.Time { return time.Date(year, m, d, 0, 0, 0, 0, time.UTC) }
	switch term {
	case "FALL":
		return date(time.September, 1), date(time.December, 21), true
	case "SPRING":
		return date(time.January, 15), date(time.May, 16), true
	case "SUMMER":
		return date(time.June, 1), date(time.August, 16), true
	}
	return time.Time{}, time.Time{}, false
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
