package matching

import (
	"time"

	"github.com/david-caro/inspire-matcher/internal/domain/match"
)

// Recorder observes compilation outcomes.
type Recorder interface {
	ObserveCompile(matchType match.Type, outcome string, elapsed time.Duration)
}
