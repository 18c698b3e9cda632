package service

import (
	"log/slog"

	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/rail"
)

// BuildRails creates one rail per configured entry plus the custom rail
func BuildRails(cfg *config.Config, repo domain.CatalogRepository, filler rail.Filler, logger *slog.Logger) ([]*rail.Rail, *rail.Rail) {
	rails := make([]*rail.Rail, 0, len(cfg.Rails))
	for _, rc := range cfg.Rails {
		rails = append(rails, rail.New(railConfig(rc), repo, filler, logger))
	}
	custom := rail.New(railConfig(cfg.CustomRail), repo, filler, logger)
	return rails, custom
}

func railConfig(rc config.RailConfig) rail.Config {
	return rail.Config{
		ID:    rc.ID,
		Title: rc.Title,
		Query: domain.Query{SortBy: rc.SortBy, Genre: rc.Genre},
		Quota: rc.Quota,
		Batch: rc.Batch,
	}
}
