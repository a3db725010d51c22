package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"shopbot/internal/logger"
)

type demoItem struct {
	Title       string
	Description string
	ImgLink     string
	DemoLink    string
	FullLink    string
	Price       int
}

var demoItems = []demoItem{
	{
		Title:       "Гайд по подготовке к собеседованию",
		Description: "Полный разбор типовых вопросов с примерами ответов.",
		ImgLink:     "https://example.com/img/interview-guide.png",
		DemoLink:    "https://example.com/demo/interview-guide.pdf",
		FullLink:    "https://example.com/full/interview-guide.pdf",
		Price:       50000,
	},
	{
		Title:       "Чек-лист запуска проекта",
		Description: "",
		ImgLink:     "https://example.com/img/launch-checklist.png",
		DemoLink:    "https://example.com/demo/launch-checklist.pdf",
		FullLink:    "https://example.com/full/launch-checklist.pdf",
		Price:       25000,
	},
}

// SeedDemoItems inserts demo catalog entries when the items table is empty.
// Intended for local development only; production catalogs are managed out-of-band.
func SeedDemoItems(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM items`); err != nil {
		return fmt.Errorf("seed: count items: %w", err)
	}
	if count > 0 {
		logger.SEED.Debug("seed skipped",
			slog.String("event", "skip"),
			slog.Int("count", count),
		)
		return nil
	}

	const q = `
		INSERT INTO items (title, description, img_link, demo_file_link, full_file_link, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)`
	for _, it := range demoItems {
		if _, err := db.ExecContext(ctx, q, it.Title, it.Description, it.ImgLink, it.DemoLink, it.FullLink, it.Price); err != nil {
			return fmt.Errorf("seed: insert %q: %w", it.Title, err)
		}
	}

	logger.SEED.Info("demo items seeded",
		slog.String("event", "summary"),
		slog.Int("count", len(demoItems)),
	)
	return nil
}
