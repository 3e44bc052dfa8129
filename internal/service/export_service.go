package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"enib-internships/backend/internal/model"
	"enib-internships/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoInternships = errors.New("该批次暂无实习")
	ErrExportGenerateFail  = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportCampaign 导出批次下全部实习为 Excel
	ExportCampaign(ctx context.Context, campaignID string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出批次内已排期实习为 iCalendar
	ExportCalendar(ctx context.Context, campaignID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) load(ctx context.Context, campaignID string) (*model.Campaign, []model.Internship, error) {
	campaign, err := s.repo.Campaign.GetByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCampaignNotFound
		}
		s.logger.Error("查询批次失败", zap.Error(err))
		return nil, nil, err
	}
	list, err := s.repo.Internship.ListByCampaign(ctx, campaignID)
	if err != nil {
		s.logger.Error("查询批次实习失败", zap.String("campaign_id", campaignID), zap.Error(err))
		return nil, nil, err
	}
	if len(list) == 0 {
		return nil, nil, ErrExportNoInternships
	}
	return campaign, list, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCampaign — 批次实习一览表
// ═══════════════════════════════════════════════════════════
//
// 表头: | 主题 | 企业 | 城市 | 状态 | 学生 | 导师 | 开始 | 结束 | 结果 |

var campaignSheetHeaders = []string{"主题", "企业", "城市", "状态", "学生", "导师", "开始", "结束", "结果"}

func (s *exportService) ExportCampaign(ctx context.Context, campaignID string) (*bytes.Buffer, string, error) {
	campaign, list, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "实习一览"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 36)
	f.SetColWidth(sheetName, "B", "C", 20)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "F", 24)
	f.SetColWidth(sheetName, "G", "I", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s (%s)", campaign.Name, campaign.Semester))
	f.MergeCell(sheetName, "A1", cell(colName(len(campaignSheetHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range campaignSheetHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(campaignSheetHeaders)-1), row), headerStyle)

	// 数据行
	row = 3
	for i := range list {
		in := &list[i]
		values := []string{
			in.Subject,
			businessName(in.Business),
			in.City,
			string(in.State),
			studentName(in.Student),
			mentorName(in.Mentor),
			formatDate(in.StartAt),
			formatDate(in.EndAt),
			string(in.Result),
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("internships_%s.xlsx", safeFilename(campaign.Name)), nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 实习日历
// ═══════════════════════════════════════════════════════════
//
// 每个同时具有开始与结束时间的实习生成一个 VEVENT；其余跳过。

func (s *exportService) ExportCalendar(ctx context.Context, campaignID string) (*bytes.Buffer, string, error) {
	campaign, list, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ENIB//Internships//FR")
	cal.SetName(campaign.Name)

	now := time.Now().UTC()
	for i := range list {
		in := &list[i]
		if in.StartAt == nil || in.EndAt == nil {
			continue
		}
		ev := cal.AddEvent(in.InternshipID + "@enib-internships")
		ev.SetDtStampTime(now)
		ev.SetAllDayStartAt(*in.StartAt)
		ev.SetAllDayEndAt(*in.EndAt)
		ev.SetSummary(eventSummary(in))
		if loc := eventLocation(in); loc != "" {
			ev.SetLocation(loc)
		}
		if in.Description != "" {
			ev.SetDescription(in.Description)
		}
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("写入 ICS 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, fmt.Sprintf("internships_%s.ics", safeFilename(campaign.Name)), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func businessName(b *model.Business) string {
	if b == nil {
		return ""
	}
	return b.Name
}

func studentName(st *model.Student) string {
	if st == nil {
		return ""
	}
	return strings.TrimSpace(st.FirstName + " " + strings.ToUpper(st.LastName))
}

func mentorName(m *model.Mentor) string {
	if m == nil {
		return ""
	}
	return m.FullName()
}

func eventSummary(in *model.Internship) string {
	if name := studentName(in.Student); name != "" {
		return fmt.Sprintf("%s - %s", in.Subject, name)
	}
	return in.Subject
}

func eventLocation(in *model.Internship) string {
	parts := make([]string, 0, 3)
	if b := businessName(in.Business); b != "" {
		parts = append(parts, b)
	}
	if in.City != "" {
		parts = append(parts, in.City)
	}
	if in.Country != "" {
		parts = append(parts, in.Country)
	}
	return strings.Join(parts, ", ")
}

func safeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "export"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
