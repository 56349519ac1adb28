package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/sousamj2/explicolivais/internal/domain/entity"
)

const historySheet = "Histórico"

// ExportHistory writes every quiz attempt of the user as an XLSX workbook
func (s *ProfileService) ExportHistory(ctx context.Context, userID uint, w io.Writer) error {
	history, err := s.historyRepo.ListAllByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to load quiz history: %w", err)
	}
	return WriteHistoryXLSX(w, history)
}

// WriteHistoryXLSX streams history rows into a single-sheet workbook
func WriteHistoryXLSX(w io.Writer, history []entity.QuizHistory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(historySheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headers := []interface{}{"Quiz", "Data", "Ano", "% ano corrente", "Pontos", "Percentagem", "Certas", "Erradas", "Não respondidas", "Total"}
	if err := sw.SetRow("A1", headers); err != nil {
		return err
	}
	for i, h := range history {
		row := []interface{}{
			h.UUID,
			h.StartedAt.Format(entity.AnonymousTimestampLayout),
			h.Year,
			h.YearPercent,
			h.Score,
			h.Percentage,
			h.NCorrect,
			h.NWrong,
			h.NSkip,
			h.TotalQuestions(),
		}
		if err := sw.SetRow(fmt.Sprintf("A%d", i+2), row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
