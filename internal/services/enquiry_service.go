package services

import (
	"context"
	"strings"

	"souqnest/internal/domain"
	applog "souqnest/internal/log"
	"souqnest/internal/validate"
)

// EnquiryService handles the public contact form.
type EnquiryService struct {
	// Backend is nil in demo mode; enquiries are then accepted and logged.
	Backend Backend
}

// EnquiryResult reports what was sent.
type EnquiryResult struct {
	Attachments int
	Dropped     int
}

func (s *EnquiryService) Submit(ctx context.Context, e domain.Enquiry, files []domain.Attachment) (EnquiryResult, error) {
	e = trimEnquiry(e)
	if err := validate.Enquiry(e); err != nil {
		return EnquiryResult{}, err
	}
	kept, dropped := validate.Attachments(files)
	if dropped > 0 {
		applog.Warn(nil, "enquiry.attachment.drop", nil, map[string]any{"dropped": dropped, "max_bytes": validate.MaxAttachmentBytes})
	}
	res := EnquiryResult{Attachments: len(kept), Dropped: dropped}
	if s.Backend == nil {
		applog.Info(nil, "enquiry.demo.accept", map[string]any{"company": e.CompanyName, "items": len(e.LineItems), "files": len(kept)})
		return res, nil
	}
	if err := s.Backend.SubmitEnquiry(ctx, e, kept); err != nil {
		return EnquiryResult{}, err
	}
	applog.Audit(nil, "enquiry.submit", map[string]any{"company": e.CompanyName, "items": len(e.LineItems), "files": len(kept)})
	return res, nil
}

// trimEnquiry trims every text field and drops line items left fully blank.
func trimEnquiry(e domain.Enquiry) domain.Enquiry {
	e.CompanyName = strings.TrimSpace(e.CompanyName)
	e.ContactName = strings.TrimSpace(e.ContactName)
	e.Email = strings.TrimSpace(e.Email)
	e.Country = strings.TrimSpace(e.Country)
	e.City = strings.TrimSpace(e.City)
	e.EnquiryType = strings.TrimSpace(e.EnquiryType)
	e.Description = strings.TrimSpace(e.Description)
	items := make([]domain.LineItem, 0, len(e.LineItems))
	for _, li := range e.LineItems {
		li.Description = strings.TrimSpace(li.Description)
		li.Category = strings.TrimSpace(li.Category)
		li.Model = strings.TrimSpace(li.Model)
		li.Unit = strings.TrimSpace(li.Unit)
		if li.Description == "" && li.Category == "" && li.Model == "" {
			continue
		}
		if li.Quantity < 1 {
			li.Quantity = 1
		}
		items = append(items, li)
	}
	e.LineItems = items
	return e
}
