// Package issues holds submitted issue reports.
package issues

import (
	"context"

	"github.com/crucial707/school-issues/internal/models"
)

// Store keeps issue reports. Implementations must return issues in
// submission order.
type Store interface {
	Add(ctx context.Context, issue models.Issue) error
	ListBySubmitter(ctx context.Context, username string) ([]models.Issue, error)
	Count(ctx context.Context) (int, error)
}
