package api

import (
	"context"

	"github.com/nao1215/civicportal/pkg/httpclient"
)

// BudgetsAPI は予算のエンドポイント。
type BudgetsAPI struct {
	hc *httpclient.Client
}

// BudgetUpdate は予算更新の内容。nilや空の項目は送信しない。
type BudgetUpdate struct {
	AllocatedAmount *float64 `json:"allocatedAmount,omitempty"`
	SpentAmount     *float64 `json:"spentAmount,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

func budgetPath(projectID string) string {
	return "/budgets/project/" + seg(projectID)
}

// GetByProject はGET /budgets/project/:id を呼び出す。
func (b *BudgetsAPI) GetByProject(ctx context.Context, projectID string) (Budget, error) {
	var out Budget
	err := b.hc.GetJSON(ctx, budgetPath(projectID), nil, &out)
	return out, err
}

// GetHistory はGET /budgets/project/:id/history を呼び出す。
func (b *BudgetsAPI) GetHistory(ctx context.Context, projectID string) (Budget, error) {
	var out Budget
	err := b.hc.GetJSON(ctx, budgetPath(projectID)+"/history", nil, &out)
	return out, err
}

// Create はPOST /budgets/project/:id を呼び出す。
func (b *BudgetsAPI) Create(ctx context.Context, projectID string, allocatedAmount float64) (Budget, error) {
	var out Budget
	err := b.hc.PostJSON(ctx, budgetPath(projectID), map[string]float64{"allocatedAmount": allocatedAmount}, &out)
	return out, err
}

// Update はPUT /budgets/project/:id を呼び出す。
func (b *BudgetsAPI) Update(ctx context.Context, projectID string, in BudgetUpdate) (Budget, error) {
	var out Budget
	err := b.hc.PutJSON(ctx, budgetPath(projectID), in, &out)
	return out, err
}
