// Package jobs defines the background task types and the worker
// bootstrap around Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPriceListExport renders the price list to a paginated PDF.
	TaskPriceListExport = "export:pricelist"
)

// PriceListExportPayload captures the view state frozen at trigger
// time, so the worker renders exactly what the session saw.
type PriceListExportPayload struct {
	ExportID   string `json:"export_id"`
	Search     string `json:"search"`
	Category   string `json:"category"`
	ShowHidden bool   `json:"show_hidden"`
	FontSize   int    `json:"font_size"`
}

// NewPriceListExportTask constructs an Asynq task. Export is
// fire-and-forget: a failed run is not retried.
func NewPriceListExportTask(payload PriceListExportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPriceListExport, data, asynq.MaxRetry(0), asynq.Queue(QueueDefault)), nil
}
