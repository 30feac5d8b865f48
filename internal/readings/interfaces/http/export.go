package http

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"supermetrics-cloud/internal/observability/metrics"
	readings "supermetrics-cloud/internal/readings/domain"
)

// BuildAggregationCSV renders aggregation results as CSV.
func BuildAggregationCSV(results []readings.AggregationResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"device_id", "device_name", "avg_value", "max_value", "min_value", "count"}); err != nil {
		return nil, err
	}
	for _, result := range results {
		record := []string{
			result.DeviceID,
			result.DeviceName,
			strconv.FormatFloat(result.AvgValue, 'f', -1, 64),
			strconv.FormatFloat(result.MaxValue, 'f', -1, 64),
			strconv.FormatFloat(result.MinValue, 'f', -1, 64),
			strconv.FormatInt(result.Count, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAggregationXLSX renders a minimal XLSX for aggregation results.
func BuildAggregationXLSX(results []readings.AggregationResult, start, end time.Time) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "aggregation"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Reading Aggregation")
	_ = f.SetCellValue(sheet, "A2", "From")
	_ = f.SetCellValue(sheet, "B2", start.Format(time.RFC3339))
	_ = f.SetCellValue(sheet, "A3", "To")
	_ = f.SetCellValue(sheet, "B3", end.Format(time.RFC3339))

	_ = f.SetCellValue(sheet, "A5", "Device ID")
	_ = f.SetCellValue(sheet, "B5", "Device Name")
	_ = f.SetCellValue(sheet, "C5", "Avg")
	_ = f.SetCellValue(sheet, "D5", "Max")
	_ = f.SetCellValue(sheet, "E5", "Min")
	_ = f.SetCellValue(sheet, "F5", "Count")
	for i, result := range results {
		row := i + 6
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), result.DeviceID)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), result.DeviceName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), result.AvgValue)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), result.MaxValue)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), result.MinValue)
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), result.Count)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildAggregationPDF renders a minimal PDF for aggregation results.
func BuildAggregationPDF(results []readings.AggregationResult, start, end time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Reading Aggregation")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("From: %s", start.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("To: %s", end.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(35, 6, "Device ID", "1", 0, "C", false, 0, "")
	pdf.CellFormat(45, 6, "Device Name", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Avg", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Max", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Min", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Count", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, result := range results {
		pdf.CellFormat(35, 6, result.DeviceID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 6, result.DeviceName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", result.AvgValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", result.MaxValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, fmt.Sprintf("%.2f", result.MinValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, strconv.FormatInt(result.Count, 10), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportHandler serves aggregation results as downloadable files.
type ExportHandler struct {
	service ReadingService
	logger  *log.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(service ReadingService, logger *log.Logger) (*ExportHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("export handler: nil service")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ExportHandler{service: service, logger: logger}, nil
}

// ServeHTTP routes export requests.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/v1/exports/aggregation.csv":
		h.export(w, r, "csv", "text/csv", func(results []readings.AggregationResult, _, _ time.Time) ([]byte, error) {
			return BuildAggregationCSV(results)
		})
	case "/api/v1/exports/aggregation.xlsx":
		h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", BuildAggregationXLSX)
	case "/api/v1/exports/aggregation.pdf":
		h.export(w, r, "pdf", "application/pdf", BuildAggregationPDF)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, format, contentType string, build func([]readings.AggregationResult, time.Time, time.Time) ([]byte, error)) {
	start := time.Now()
	query, err := ParseAggregationQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.service.Aggregate(r.Context(), query)
	if err != nil {
		status := aggregationStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Printf("aggregation export: %v", err)
		}
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		writeError(w, status, publicMessage(err, status))
		return
	}

	payload, err := build(results, query.Start, query.End)
	if err != nil {
		h.logger.Printf("aggregation export: build %s: %v", format, err)
		metrics.ObserveExport(format, metrics.ResultError, time.Since(start))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(start))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "aggregation."+format))
	_, _ = w.Write(payload)
}
