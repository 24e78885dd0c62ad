package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AdjustmentPrefix = "ADJ"
	TransferPrefix   = "TRF"
)

// DocumentNumber genera números legibles tipo ADJ-20260115-3F9A1C.
// El sufijo sale del UUID del documento para que sea estable y sin coordinación entre instancias.
func DocumentNumber(prefix string, at time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:6])
	return prefix + "-" + at.UTC().Format("20060102") + "-" + suffix
}
