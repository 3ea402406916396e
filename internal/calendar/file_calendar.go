package calendar

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/username/bizday-calc/pkg/dateutil"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// FileCalendar implements Calendar using a local holiday table file.
//
// Two formats are understood, chosen by extension:
//
//	.csv  the Cabinet Office list (syukujitsu.csv): header row, then
//	      "2006/1/2,name" rows; Shift_JIS or UTF-8
//	other one holiday per line: "YYYY-MM-DD name", '#' starts a comment
type FileCalendar struct {
	filePath string
	logger   *zap.Logger
	table    *TableCalendar
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		filePath: filePath,
		logger:   logger,
	}
}

// Load loads holiday data from file
func (fc *FileCalendar) Load() error {
	data, err := os.ReadFile(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open calendar file: %w", err)
	}

	var holidays []Holiday
	if strings.EqualFold(filepath.Ext(fc.filePath), ".csv") {
		holidays, err = fc.parseCSV(data)
	} else {
		holidays, err = fc.parseText(data)
	}
	if err != nil {
		return fmt.Errorf("error reading calendar file: %w", err)
	}

	fc.table = NewTableCalendar(holidays...)

	fc.logger.Info("Calendar file loaded",
		zap.String("file", fc.filePath),
		zap.Int("holidays", fc.table.Len()))

	return nil
}

// parseText parses "YYYY-MM-DD name" lines. Bad lines are logged and skipped.
func (fc *FileCalendar) parseText(data []byte) ([]Holiday, error) {
	var holidays []Holiday

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		date, err := time.Parse("2006-01-02", parts[0])
		if err != nil {
			fc.logger.Warn("Failed to parse date", zap.String("line", line), zap.Error(err))
			continue
		}

		name := ""
		if len(parts) == 2 {
			name = strings.TrimSpace(parts[1])
		}

		holidays = append(holidays, Holiday{
			Date: dateutil.FromTime(date),
			Name: name,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return holidays, nil
}

// parseCSV parses the Cabinet Office holiday CSV
func (fc *FileCalendar) parseCSV(data []byte) ([]Holiday, error) {
	reader := csv.NewReader(decodeJapaneseText(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("unexpected header columns: %d (expected 2)", len(header))
	}

	var holidays []Holiday
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) < 2 {
			fc.logger.Warn("Skipping short CSV row", zap.Int("line", line))
			continue
		}

		dateStr := strings.TrimSpace(record[0])
		name := strings.TrimSpace(record[1])
		if dateStr == "" {
			continue
		}

		date, err := time.Parse("2006/1/2", dateStr)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q: %w", line, dateStr, err)
		}

		holidays = append(holidays, Holiday{
			Date: dateutil.FromTime(date),
			Name: name,
		})
	}

	return holidays, nil
}

// decodeJapaneseText returns UTF-8 input as is (minus a BOM) and decodes
// anything else as Shift_JIS.
func decodeJapaneseText(data []byte) io.Reader {
	if utf8.Valid(data) {
		return bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	}
	return transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder())
}

// GetHoliday returns the holiday on date, or nil
func (fc *FileCalendar) GetHoliday(date dateutil.CalendarDate) (*Holiday, error) {
	if fc.table == nil {
		return nil, fmt.Errorf("%s: %w", fc.filePath, ErrNotLoaded)
	}
	return fc.table.GetHoliday(date)
}

// Holidays returns every loaded holiday sorted by date
func (fc *FileCalendar) Holidays() []Holiday {
	if fc.table == nil {
		return nil
	}
	return fc.table.Holidays()
}
