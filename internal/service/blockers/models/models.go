package models

import (
	"time"

	"github.com/m04kA/SMC-CarWashService/internal/domain"
)

// CreateBlockerRequest запрос на создание периода закрытия
type CreateBlockerRequest struct {
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"` // по умолчанию конец дня начала
	Comment   *string    `json:"comment,omitempty"`
}

// BlockerResponse ответ с данными периода закрытия
type BlockerResponse struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdOn"`
}

// BlockerListResponse ответ со списком периодов закрытия
type BlockerListResponse struct {
	Blockers []BlockerResponse `json:"blockers"`
}

// FromDomainBlocker конвертирует domain модель в DTO
func FromDomainBlocker(b *domain.Blocker) *BlockerResponse {
	if b == nil {
		return nil
	}
	return &BlockerResponse{
		ID:        b.ID,
		StartDate: b.StartTime,
		EndDate:   b.EndTime,
		Comment:   b.Comment,
		CreatedAt: b.CreatedAt,
	}
}

// FromDomainBlockerList конвертирует список domain моделей в DTO
func FromDomainBlockerList(blockers []*domain.Blocker) *BlockerListResponse {
	resp := &BlockerListResponse{Blockers: make([]BlockerResponse, 0, len(blockers))}
	for _, b := range blockers {
		resp.Blockers = append(resp.Blockers, *FromDomainBlocker(b))
	}
	return resp
}
