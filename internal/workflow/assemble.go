package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"greenhome/db"
	"greenhome/models"
)

// assemble loads users, auditors, files and audits for the given requests
// in one query per relation and builds the nested views.
func (s *Service) assemble(ctx context.Context, requests []db.Request) ([]models.RequestView, error) {
	views := make([]models.RequestView, 0, len(requests))
	if len(requests) == 0 {
		return views, nil
	}

	ids := make([]int, 0, len(requests))
	userIDs := make([]string, 0, len(requests)*2)
	seen := map[string]bool{}
	addUser := func(id string) {
		if !seen[id] {
			seen[id] = true
			userIDs = append(userIDs, id)
		}
	}
	for _, r := range requests {
		ids = append(ids, r.ID)
		addUser(r.UserID)
		if r.AuditorID != nil {
			addUser(*r.AuditorID)
		}
	}

	users, err := s.store.GetUserSummaries(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	files, err := s.store.ListFilesForRequests(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load files: %w", err)
	}
	audits, err := s.store.ListAuditsForRequests(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load audits: %w", err)
	}

	usersByID := make(map[string]db.UserSummary, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	filesByRequest := map[int][]models.FileSummary{}
	for _, f := range files {
		filesByRequest[f.RequestID] = append(filesByRequest[f.RequestID], models.FileSummary{
			ID:        f.ID,
			Name:      f.Name,
			URL:       f.URL,
			Type:      f.Type,
			CreatedAt: f.CreatedAt,
		})
	}
	auditsByRequest := make(map[int]db.Audit, len(audits))
	for _, a := range audits {
		auditsByRequest[a.RequestID] = a
	}

	for i := range requests {
		r := &requests[i]
		v := requestView(r)
		if u, ok := usersByID[r.UserID]; ok {
			v.User = &models.UserSummary{
				ID:               u.ID,
				Email:            u.Email,
				FirstName:        u.FirstName,
				LastName:         u.LastName,
				OrganizationName: u.OrganizationName,
			}
		}
		if r.AuditorID != nil {
			if u, ok := usersByID[*r.AuditorID]; ok {
				v.Auditor = &models.AuditorSummary{
					ID:        u.ID,
					Email:     u.Email,
					FirstName: u.FirstName,
					LastName:  u.LastName,
				}
			}
		}
		v.Files = filesByRequest[r.ID]
		if a, ok := auditsByRequest[r.ID]; ok {
			v.Audit = &models.AuditSummary{
				ID:            a.ID,
				ChecklistData: checklistJSON(a),
				Conclusion:    a.Conclusion,
				SubmittedAt:   a.SubmittedAt,
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// requestView projects the scalar fields only.
func requestView(r *db.Request) models.RequestView {
	return models.RequestView{
		ID:           r.ID,
		UserID:       r.UserID,
		AuditorID:    r.AuditorID,
		Status:       r.Status,
		ProjectType:  r.ProjectType,
		ProjectArea:  r.ProjectArea,
		Location:     r.Location,
		Description:  r.Description,
		PriceQuote:   r.PriceQuote,
		AdminComment: r.AdminComment,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func checklistJSON(a db.Audit) json.RawMessage {
	if !a.ChecklistData.Valid || len(a.ChecklistData.JSONText) == 0 {
		return nil
	}
	return json.RawMessage(a.ChecklistData.JSONText)
}
