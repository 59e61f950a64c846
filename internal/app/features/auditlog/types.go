// internal/app/features/auditlog/types.go
package auditlog

import "github.com/dalemusser/flotahub/internal/app/store/audit"

const (
	pageSize    = 50
	maxPageSize = 200
	dateLayout  = "2006-01-02"
)

type listResponse struct {
	Items      []audit.Event `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Categories []string      `json:"categories"`
}
