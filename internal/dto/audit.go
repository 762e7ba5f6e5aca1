package dto

import "coursepath/internal/domain/audit"

// AuditResponse 学位审计结果
type AuditResponse struct {
	StudentID   string `json:"student_id"`
	GeneratedAt string `json:"generated_at"`
	audit.Result
}
