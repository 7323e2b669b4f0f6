package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/thestartupdeveloper10/jamiibudget/internal/csvparse"
	"github.com/thestartupdeveloper10/jamiibudget/internal/models"
)

// ImportRequest names a CSV file, either a local path or a blob in the
// uploads container.
type ImportRequest struct {
	Kind models.Kind
	Path string
	Blob string
}

// ImportView reports what an import saved and skipped.
type ImportView struct {
	Kind     models.Kind `json:"kind"`
	Source   string      `json:"source"`
	Imported int         `json:"imported"`
	Errors   []string    `json:"errors"`
}

// Import parses a CSV of transactions and saves the valid rows. Invalid rows
// are reported and skipped.
func (d *Dependencies) Import(ctx context.Context, req ImportRequest) error {
	src, err := d.source(req.Kind)
	if err != nil {
		return err
	}

	content, origin, err := d.readImport(ctx, req)
	if err != nil {
		return err
	}

	inputs, rowErrors := csvparse.ParseCSV(content, d.UserID)
	slog.Info("parsed CSV content", "source", origin, "transactions_count", len(inputs), "errors_count", len(rowErrors))

	view := ImportView{Kind: req.Kind, Source: origin, Errors: rowErrors}
	if view.Errors == nil {
		view.Errors = []string{}
	}

	if len(inputs) > 0 {
		created, err := createAll(ctx, src, inputs)
		if err != nil {
			slog.Error("failed to save imported transactions", "kind", req.Kind, "total_count", len(inputs), "error", err)
			return fmt.Errorf("save imported %s: %w", req.Kind, err)
		}
		view.Imported = len(created)
		slog.Info("saved imported transactions", "kind", req.Kind, "new_count", len(created))
		d.changed(ctx, req.Kind, models.ActionImported, "")
	} else if len(rowErrors) > 0 {
		slog.Warn("CSV validation failed with no valid transactions", "source", origin, "errors_count", len(rowErrors))
	}

	return d.render(view, func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d %s from %s\n", view.Imported, req.Kind, origin)
		for _, e := range view.Errors {
			fmt.Fprintf(w, "  skipped: %s\n", e)
		}
	})
}

func (d *Dependencies) readImport(ctx context.Context, req ImportRequest) (string, string, error) {
	switch {
	case req.Blob != "":
		if d.Blob == nil {
			return "", "", ErrNoBlobStorage
		}
		content, err := d.Blob.DownloadText(ctx, d.UploadsContainer, req.Blob)
		if err != nil {
			slog.Error("failed to download CSV from blob", "blob_name", req.Blob, "container", d.UploadsContainer, "error", err)
			return "", "", fmt.Errorf("download %s: %w", req.Blob, err)
		}
		return content, d.UploadsContainer + "/" + req.Blob, nil
	case req.Path != "":
		data, err := os.ReadFile(req.Path)
		if err != nil {
			return "", "", fmt.Errorf("read %s: %w", req.Path, err)
		}
		return string(data), filepath.Base(req.Path), nil
	}
	return "", "", fmt.Errorf("no CSV file given")
}

// createAll uses the source's batch insert when it has one.
func createAll(ctx context.Context, src TransactionSource, inputs []models.TransactionInput) ([]models.Transaction, error) {
	if batch, ok := src.(BatchCreator); ok {
		return batch.CreateMany(ctx, inputs)
	}
	created := make([]models.Transaction, 0, len(inputs))
	for i, in := range inputs {
		t, err := src.Create(ctx, in)
		if err != nil {
			return created, fmt.Errorf("transaction %d: %w", i, err)
		}
		created = append(created, t)
	}
	return created, nil
}
