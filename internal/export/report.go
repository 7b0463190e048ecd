package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"commentpulse/internal/mining"
	"commentpulse/internal/sentiment"
	"commentpulse/internal/types"
)

// Report bundles everything the text report needs.
type Report struct {
	Dataset    *types.Dataset
	SourcePath string
	Summary    sentiment.Summary
	Mining     *mining.Result
	HotTopics  []mining.HotTopic
	Workbook   string
	Charts     []string
}

// Render builds the plain-text analysis report.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "评论分析报告\n")
	fmt.Fprintf(&b, "生成时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	if r.SourcePath != "" {
		fmt.Fprintf(&b, "数据文件: %s\n", r.SourcePath)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "数据概览\n")
	fmt.Fprintf(&b, "- 评论总数: %d 条\n", len(r.Dataset.Comments))
	fmt.Fprintf(&b, "- 用户数量: %d 人\n", r.Dataset.UniqueAuthors())
	b.WriteString("\n")

	fmt.Fprintf(&b, "情感分析\n")
	fmt.Fprintf(&b, "- 积极评论: %d 条\n", r.Summary.Positive)
	fmt.Fprintf(&b, "- 中性评论: %d 条\n", r.Summary.Neutral)
	fmt.Fprintf(&b, "- 消极评论: %d 条\n", r.Summary.Negative)
	fmt.Fprintf(&b, "- 平均情感分数: %.3f\n", r.Summary.MeanScore)
	b.WriteString("\n")

	if r.Mining != nil {
		fmt.Fprintf(&b, "文本分析\n")
		fmt.Fprintf(&b, "- 总词汇量: %d 词\n", r.Mining.TotalWords)
		fmt.Fprintf(&b, "- 独特词汇: %d 个\n", r.Mining.UniqueWords)
		b.WriteString("\n")
	}

	if len(r.HotTopics) > 0 {
		fmt.Fprintf(&b, "热点话题\n")
		for i, topic := range r.HotTopics {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "%d. %s (出现%d次, 相关评论%d条)\n",
				i+1, topic.Keyword, topic.Count, topic.RelatedComments)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "输出文件\n")
	if r.Workbook != "" {
		fmt.Fprintf(&b, "- 报告文件: %s\n", r.Workbook)
	}
	fmt.Fprintf(&b, "- 图表数量: %d 个\n", len(r.Charts))

	return b.String()
}

// Save writes the rendered report to outputDir with a timestamped name and
// returns the path.
func (r *Report) Save(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(outputDir, types.TimestampedFilename("analysis_report", "txt"))
	if err := os.WriteFile(path, []byte(r.Render()), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}
