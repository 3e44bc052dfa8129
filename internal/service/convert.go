package service

import (
	"encoding/json"

	"enib-internships/backend/internal/dto"
	"enib-internships/backend/internal/model"
)

// ── 模型 → 响应 DTO ──

func toInternshipTypeResponse(t *model.InternshipType) *dto.InternshipTypeResponse {
	if t == nil {
		return nil
	}
	return &dto.InternshipTypeResponse{ID: t.InternshipTypeID, Label: t.Label, Description: t.Description}
}

func toBusinessResponse(b *model.Business) *dto.BusinessResponse {
	if b == nil {
		return nil
	}
	return &dto.BusinessResponse{
		ID:         b.BusinessID,
		Name:       b.Name,
		Country:    b.Country,
		City:       b.City,
		PostalCode: b.PostalCode,
		Address:    b.Address,
		Additional: b.Additional,
	}
}

func toStudentResponse(s *model.Student) *dto.StudentResponse {
	if s == nil {
		return nil
	}
	return &dto.StudentResponse{
		ID:        s.StudentID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Email:     s.Email,
		Semester:  s.Semester,
	}
}

func toMentorResponse(m *model.Mentor) *dto.MentorResponse {
	if m == nil {
		return nil
	}
	return &dto.MentorResponse{
		ID:        m.MentorID,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		FullName:  m.FullName(),
		Email:     m.Email,
		Role:      string(m.Role),
	}
}

func toCampaignRef(c *model.Campaign) *dto.CampaignRef {
	if c == nil {
		return nil
	}
	return &dto.CampaignRef{ID: c.CampaignID, Name: c.Name}
}

func toCampaignResponse(c *model.Campaign) *dto.CampaignResponse {
	resp := &dto.CampaignResponse{
		ID:             c.CampaignID,
		Name:           c.Name,
		Description:    c.Description,
		Semester:       c.Semester,
		MaxProposition: c.MaxProposition,
		IsPublished:    c.IsPublished,
		StartAt:        dto.FormatTimePtr(c.StartAt),
		EndAt:          dto.FormatTimePtr(c.EndAt),
		InternshipType: toInternshipTypeResponse(c.InternshipType),
		LaunchedAt:     dto.FormatTimePtr(c.LaunchedAt),
		CreatedAt:      dto.FormatTime(c.CreatedAt),
	}
	if len(c.LaunchSummary) > 0 {
		var summary model.LaunchSummary
		if err := json.Unmarshal(c.LaunchSummary, &summary); err == nil {
			resp.LaunchSummary = summary
		}
	}
	return resp
}

func toInternshipResponse(i *model.Internship) *dto.InternshipResponse {
	resp := &dto.InternshipResponse{
		ID:                i.InternshipID,
		Subject:           i.Subject,
		Description:       i.Description,
		Country:           i.Country,
		City:              i.City,
		PostalCode:        i.PostalCode,
		Address:           i.Address,
		Additional:        i.Additional,
		IsInternational:   i.IsInternational,
		State:             string(i.State),
		Result:            string(i.Result),
		PublishAt:         dto.FormatTimePtr(i.PublishAt),
		StartAt:           dto.FormatTimePtr(i.StartAt),
		EndAt:             dto.FormatTimePtr(i.EndAt),
		Business:          toBusinessResponse(i.Business),
		InternshipType:    toInternshipTypeResponse(i.InternshipType),
		AvailableCampaign: toCampaignRef(i.AvailableCampaign),
		ValidatedCampaign: toCampaignRef(i.ValidatedCampaign),
		Mentor:            toMentorResponse(i.Mentor),
		Student:           toStudentResponse(i.Student),
		PropositionCount:  len(i.MentoringPropositions),
		CreatedAt:         dto.FormatTime(i.CreatedAt),
		UpdatedAt:         dto.FormatTime(i.UpdatedAt),
	}
	for k := range i.Files {
		resp.Files = append(resp.Files, *toFileResponse(&i.Files[k]))
	}
	return resp
}

func toFileResponse(f *model.File) *dto.FileResponse {
	return &dto.FileResponse{
		ID:        f.FileID,
		Name:      f.Name,
		Type:      f.Type,
		Size:      f.Size,
		CreatedAt: dto.FormatTime(f.CreatedAt),
	}
}

func toPropositionResponse(p *model.MentoringProposition) *dto.PropositionResponse {
	return &dto.PropositionResponse{
		ID:           p.PropositionID,
		CampaignID:   p.CampaignID,
		InternshipID: p.InternshipID,
		Comment:      p.Comment,
		MentorID:     p.MentorID,
		Mentor:       toMentorResponse(p.Mentor),
		CreatedAt:    dto.FormatTime(p.CreatedAt),
	}
}
