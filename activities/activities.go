// Package activities is the thin typed surface over the planner's activity
// CRUD endpoints. It owns no state: every call goes through the
// authenticated pipeline, which handles credentials and session expiry.
package activities

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sgdea/go-planner-client/client"
)

// Endpoint is the activities collection root. The trailing slash matters to
// the backend's router.
const Endpoint = "/activities/"

// Activity mirrors the backend's activity payload. Optional fields are
// pointers because the backend distinguishes null from absent-but-empty.
type Activity struct {
	ID           int64      `json:"id,omitempty"`
	Title        string     `json:"title" validate:"required"`
	TypeActivity string     `json:"type_activity" validate:"required"`
	Subject      string     `json:"subject" validate:"required"`
	Description  *string    `json:"description"`
	EventDate    *time.Time `json:"event_date"`
	Deadline     *time.Time `json:"deadline"`
	Grade        *float64   `json:"grade"`
	User         int64      `json:"user" validate:"required,gt=0"`
}

// SubActivity is a checklist item under an activity.
type SubActivity struct {
	ID          int64      `json:"id,omitempty"`
	Activity    int64      `json:"activity" validate:"required,gt=0"`
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Done        bool       `json:"done"`
}

// API is the slice of the request pipeline this service consumes.
type API interface {
	Get(ctx context.Context, resource, slug string, out any) error
	Query(ctx context.Context, resource string, params url.Values, out any) error
	Post(ctx context.Context, resource string, payload, out any) error
	Update(ctx context.Context, resource, slug string, payload, out any) error
	Patch(ctx context.Context, resource string, payload, out any) error
	Delete(ctx context.Context, resource string) error
}

var _ API = (*client.Client)(nil)

// Service performs activity CRUD through an API client.
type Service struct {
	api      API
	validate *validator.Validate
}

// NewService creates an activity service over the given pipeline.
func NewService(api API) *Service {
	return &Service{
		api:      api,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// checkValid runs client-side validation and reports failures in the same
// shape as a backend 400, so UI collaborators branch identically on both.
func (s *Service) checkValid(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := map[string]any{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fmt.Sprintf("failed %q validation", fe.Tag())
		}
	}
	return &client.APIError{
		Status:  http.StatusBadRequest,
		Message: "validation failed",
		Fields:  fields,
	}
}

// List returns every activity visible to the session.
func (s *Service) List(ctx context.Context) ([]Activity, error) {
	var out []Activity
	if err := s.api.Get(ctx, Endpoint, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Search lists activities filtered by query parameters.
func (s *Service) Search(ctx context.Context, params url.Values) ([]Activity, error) {
	var out []Activity
	if err := s.api.Query(ctx, Endpoint, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one activity by ID.
func (s *Service) Get(ctx context.Context, id int64) (*Activity, error) {
	var out Activity
	if err := s.api.Get(ctx, Endpoint, fmt.Sprintf("%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts a new activity after client-side validation.
func (s *Service) Create(ctx context.Context, activity Activity) (*Activity, error) {
	if err := s.checkValid(activity); err != nil {
		return nil, err
	}
	var out Activity
	if err := s.api.Post(ctx, Endpoint, activity, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces an existing activity. The slug form sends the item path
// without a trailing slash; the backend accepts item paths either way, it is
// only the collection roots that require one.
func (s *Service) Update(ctx context.Context, activity Activity) (*Activity, error) {
	if activity.ID == 0 {
		return nil, &client.APIError{Status: http.StatusBadRequest, Message: "activity id is required"}
	}
	if err := s.checkValid(activity); err != nil {
		return nil, err
	}
	var out Activity
	if err := s.api.Update(ctx, Endpoint, fmt.Sprintf("%d", activity.ID), activity, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Patch applies a partial update to an activity.
func (s *Service) Patch(ctx context.Context, id int64, fields map[string]any) (*Activity, error) {
	var out Activity
	if err := s.api.Patch(ctx, fmt.Sprintf("%s%d/", Endpoint, id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an activity.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("%s%d/", Endpoint, id))
}

func subEndpoint(activityID int64) string {
	return fmt.Sprintf("%s%d/subactivities/", Endpoint, activityID)
}

// SubActivities lists the checklist items under an activity.
func (s *Service) SubActivities(ctx context.Context, activityID int64) ([]SubActivity, error) {
	var out []SubActivity
	if err := s.api.Get(ctx, subEndpoint(activityID), "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSubActivity posts a new checklist item after validation.
func (s *Service) CreateSubActivity(ctx context.Context, sub SubActivity) (*SubActivity, error) {
	if err := s.checkValid(sub); err != nil {
		return nil, err
	}
	var out SubActivity
	if err := s.api.Post(ctx, subEndpoint(sub.Activity), sub, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSubActivity removes a checklist item.
func (s *Service) DeleteSubActivity(ctx context.Context, activityID, id int64) error {
	return s.api.Delete(ctx, fmt.Sprintf("%s%d/", subEndpoint(activityID), id))
}
