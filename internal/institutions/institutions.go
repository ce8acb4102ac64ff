// Package institutions holds the per-institution extraction configs.
// Each institution is pure configuration consumed by the generic engine
// in internal/extract; supporting a new statement layout means adding a
// Config here, not touching engine code.
package institutions

import (
	"github.com/insightdelivered/statement-extractor/internal/extract"
	"github.com/insightdelivered/statement-extractor/internal/securities"
)

// All returns the institution catalog in classification order. Order
// matters: the first config whose identifiers and document marker match
// governs the document.
func All(reg securities.Registry) []*extract.Config {
	return []*extract.Config{
		Questrade(reg),
	}
}
