package service

import (
	"context"
	"fmt"
)

// fetchAll is a private helper that walks 1-based pages until one reports
// no successor. On error it returns what it collected so far.
func fetchAll[T any](
	ctx context.Context,
	fetch func(ctx context.Context, page int) ([]T, bool, error),
	onProgress func(page, loaded int),
) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		items, hasNext, err := fetch(ctx, page)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, items...)

		if onProgress != nil {
			onProgress(page, len(all))
		}

		if !hasNext {
			break
		}
	}

	return all, nil
}
