package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nofnotg/anamnesis/internal/model"
)

// Renderer writes reports as JSON artifacts and Markdown documents for
// the reporting collaborators.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderMarkdown writes the reviewer-facing Markdown report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# 의료기록 분석 보고서\n\n")
	fmt.Fprintf(&b, "- 문서: `%s`\n", report.SourcePath)
	fmt.Fprintf(&b, "- 생성일시: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if report.Contract != nil {
		fmt.Fprintf(&b, "- 계약일: %s (면책기간 %d일)\n",
			report.Contract.IssueDate.Format("2006-01-02"), report.Contract.WaitingPeriodDays)
	}
	if report.Claim != nil && !report.Claim.ClaimDate.IsZero() {
		fmt.Fprintf(&b, "- 청구일: %s\n", report.Claim.ClaimDate.Format("2006-01-02"))
	}
	b.WriteString("\n")

	if report.Disclosure != nil {
		d := report.Disclosure
		fmt.Fprintf(&b, "## 고지의무 위험 평가\n\n")
		fmt.Fprintf(&b, "- 종합 위험도: **%.2f (%s)**\n", d.OverallRiskScore, d.RiskAssessment.Level)
		fmt.Fprintf(&b, "- 고지 필요 여부: **%s**\n", yesNo(d.DisclosureRequired))
		fmt.Fprintf(&b, "- 요약: %s\n\n", d.Summary)

		if len(d.Recommendations) > 0 {
			fmt.Fprintf(&b, "### 권고사항\n\n")
			for _, rec := range d.Recommendations {
				marker := ""
				if rec.ActionRequired {
					marker = " **(조치 필요)**"
				}
				fmt.Fprintf(&b, "- [%s] %s%s\n", rec.Priority, rec.Message, marker)
			}
			b.WriteString("\n")
		}

		if len(d.Items) > 0 {
			fmt.Fprintf(&b, "### 고지 관련 항목\n\n")
			fmt.Fprintf(&b, "| 항목 | 유형 | 분류 | 중증도 | 신뢰도 |\n")
			fmt.Fprintf(&b, "|------|------|------|--------|--------|\n")
			for _, item := range d.Items {
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %.2f |\n",
					item.NormalizedText, item.Type, item.Category, item.Severity, item.Confidence)
			}
			b.WriteString("\n")
		}
	}

	if len(report.Episodes) > 0 {
		fmt.Fprintf(&b, "## 진료 에피소드\n\n")
		for _, ep := range report.Episodes {
			fmt.Fprintf(&b, "- %s\n", ep.Summary)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## 타임라인 (%d개 기준점)\n\n", len(report.Anchors))
	if len(report.Anchors) > 0 {
		fmt.Fprintf(&b, "| 날짜 | 유형 | 신뢰도 | 원문 |\n")
		fmt.Fprintf(&b, "|------|------|--------|------|\n")
		for _, a := range report.Anchors {
			fmt.Fprintf(&b, "| %s | %s | %.2f | %s |\n",
				a.Date.Format("2006-01-02"), a.Type, a.Confidence, a.OriginalDateText)
		}
		b.WriteString("\n")
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "## 경고\n\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "- [%s] %s\n", w.Stage, w.Message)
		}
		b.WriteString("\n")
	}

	if report.Narrative != nil && report.Narrative.Text != "" {
		fmt.Fprintf(&b, "## 검토 요약 (LLM 생성, 분석 결과에 영향 없음)\n\n")
		fmt.Fprintf(&b, "%s\n\n", report.Narrative.Text)
	}

	if r.includeFooter {
		b.WriteString("---\n본 보고서는 자동 분석 결과이며 법적 판단을 대신하지 않습니다.\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// RenderSummary prints a short result line to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	if report.Disclosure == nil {
		fmt.Printf("%s: no disclosure analysis\n", report.SourcePath)
		return
	}
	d := report.Disclosure
	fmt.Printf("%s: risk %.2f (%s), %d items, disclosure required: %s\n",
		report.SourcePath, d.OverallRiskScore, d.RiskAssessment.Level, len(d.Items), yesNo(d.DisclosureRequired))
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
