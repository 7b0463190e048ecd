// Package export renders analysis results as multi-sheet spreadsheets, HTML
// charts, and plain-text reports.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"commentpulse/internal/logging"
	"commentpulse/internal/mining"
	"commentpulse/internal/sentiment"
	"commentpulse/internal/types"

	"github.com/xuri/excelize/v2"
)

// Excel sheet names match the report layout of the legacy exports.
const (
	sheetRaw       = "原始数据"
	sheetTop       = "热门评论"
	sheetSentiment = "情感分析"
	sheetWords     = "词频统计"
)

// maxSheetName is the spreadsheet format's sheet name limit.
const maxSheetName = 31

// WriteWorkbook writes the full analysis workbook: raw data, top comments by
// likes, sentiment columns, and word frequencies.
func WriteWorkbook(path string, ds *types.Dataset, miningResult *mining.Result, topN int) error {
	timer := logging.StartTimer(logging.CategoryExport, "WriteWorkbook")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeRawSheet(f, sheetRaw, ds.Comments); err != nil {
		return err
	}
	if err := writeRawSheet(f, sheetTop, ds.TopByLikes(topN)); err != nil {
		return err
	}
	if err := writeSentimentSheet(f, ds.Comments); err != nil {
		return err
	}
	if miningResult != nil {
		if err := writeWordSheet(f, miningResult.TopWords); err != nil {
			return err
		}
	}

	// The default sheet was renamed to the raw data sheet; nothing to delete.
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	logging.Export("workbook saved: %s", path)
	return nil
}

func writeRawSheet(f *excelize.File, name string, comments []types.Comment) error {
	name = truncateSheetName(name)
	if err := ensureSheet(f, name); err != nil {
		return err
	}

	headers := []string{"作者", "内容", "点赞数", "时间", "情感分数", "情感分类"}
	if err := writeRow(f, name, 1, headers); err != nil {
		return err
	}

	for i, c := range comments {
		row := []interface{}{c.Author, c.Content, c.Likes, c.PostedAt, c.SentimentScore, labelZH(c.SentimentLabel)}
		if err := writeValues(f, name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeSentimentSheet(f *excelize.File, comments []types.Comment) error {
	name := truncateSheetName(sheetSentiment)
	if err := ensureSheet(f, name); err != nil {
		return err
	}

	if err := writeRow(f, name, 1, []string{"作者", "内容", "情感分数", "情感分类"}); err != nil {
		return err
	}
	for i, c := range comments {
		row := []interface{}{c.Author, c.Content, c.SentimentScore, labelZH(c.SentimentLabel)}
		if err := writeValues(f, name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func writeWordSheet(f *excelize.File, words []mining.WordCount) error {
	name := truncateSheetName(sheetWords)
	if err := ensureSheet(f, name); err != nil {
		return err
	}

	if err := writeRow(f, name, 1, []string{"词汇", "频次"}); err != nil {
		return err
	}
	for i, w := range words {
		if err := writeValues(f, name, i+2, []interface{}{w.Word, w.Count}); err != nil {
			return err
		}
	}
	return nil
}

// ensureSheet creates the sheet if missing; the first created sheet replaces
// the workbook default.
func ensureSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("sheet index: %w", err)
	}
	if idx >= 0 {
		return nil
	}

	sheets := f.GetSheetList()
	if len(sheets) == 1 && sheets[0] == "Sheet1" {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename default sheet: %w", err)
		}
		return nil
	}

	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return writeValues(f, sheet, row, cells)
}

func writeValues(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func truncateSheetName(name string) string {
	runes := []rune(name)
	if len(runes) > maxSheetName {
		return string(runes[:maxSheetName])
	}
	return name
}

// labelZH maps sentiment labels to the Chinese display values used in the
// exported sheets.
func labelZH(label string) string {
	switch label {
	case sentiment.LabelPositive:
		return "积极"
	case sentiment.LabelNegative:
		return "消极"
	case sentiment.LabelNeutral:
		return "中性"
	default:
		return label
	}
}
