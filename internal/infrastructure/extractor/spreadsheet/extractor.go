// Package spreadsheet reads question/answer rows out of XLSX workbooks.
package spreadsheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/faq-assistant/internal/core/domain"
	"github.com/kirillkom/faq-assistant/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

type columns struct {
	question int
	answer   int
	category int
}

// ExtractPairs reads every sheet. A first row naming "question" and
// "answer" columns is treated as a header; otherwise columns A, B and C
// hold question, answer and category.
func (e *Extractor) ExtractPairs(ctx context.Context, doc *domain.Document) ([]domain.QAPair, bool, error) {
	book, err := e.open(ctx, doc)
	if err != nil {
		return nil, true, err
	}
	defer book.Close()

	pairs := make([]domain.QAPair, 0)
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, true, domain.WrapError(domain.ErrInvalidInput, "read sheet", fmt.Errorf("%s: %w", sheet, err))
		}
		if len(rows) == 0 {
			continue
		}

		cols, header := detectColumns(rows[0])
		if header {
			rows = rows[1:]
		}
		for _, row := range rows {
			question := cell(row, cols.question)
			answer := cell(row, cols.answer)
			if question == "" || answer == "" {
				continue
			}
			pairs = append(pairs, domain.QAPair{
				Question: question,
				Answer:   answer,
				Category: cell(row, cols.category),
				Source:   string(domain.SourceDocument),
			})
		}
	}
	return pairs, true, nil
}

// Extract renders rows as tab separated lines.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	book, err := e.open(ctx, doc)
	if err != nil {
		return "", err
	}
	defer book.Close()

	var out strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "read sheet", fmt.Errorf("%s: %w", sheet, err))
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				out.WriteString(line)
				out.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func (e *Extractor) open(ctx context.Context, doc *domain.Document) (*excelize.File, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	book, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse workbook", err)
	}
	return book, nil
}

func detectColumns(first []string) (columns, bool) {
	cols := columns{question: -1, answer: -1, category: -1}
	for i, raw := range first {
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "question", "q":
			cols.question = i
		case "answer", "a":
			cols.answer = i
		case "category", "topic":
			cols.category = i
		}
	}
	if cols.question >= 0 && cols.answer >= 0 {
		return cols, true
	}
	return columns{question: 0, answer: 1, category: 2}, false
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
