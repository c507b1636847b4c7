// Package service implements the posting platform: accounts, posts,
// reactions, comments, notifications and moderation. HTTP handlers and the
// action dispatcher both call into it, so every rule lives here once.
package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/sujalbistaa/suara/internal/apierror"
	"github.com/sujalbistaa/suara/internal/auth"
	"github.com/sujalbistaa/suara/internal/metrics"
	"github.com/sujalbistaa/suara/internal/models"
	"github.com/sujalbistaa/suara/internal/storage"
	"github.com/sujalbistaa/suara/internal/ws"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Options wires optional collaborators. Zero values are safe: events are
// discarded, metrics are skipped and uploads are refused.
type Options struct {
	Events     ws.Publisher
	Metrics    *metrics.Metrics
	Uploader   storage.Uploader
	AdminEmail string
	Now        func() time.Time
}

// Service carries the database and collaborators shared by every operation.
type Service struct {
	db         *gorm.DB
	tokens     *auth.TokenManager
	events     ws.Publisher
	metrics    *metrics.Metrics
	uploader   storage.Uploader
	adminEmail string
	now        func() time.Time
	validate   *validator.Validate
}

func New(db *gorm.DB, tokens *auth.TokenManager, opts Options) *Service {
	if opts.Events == nil {
		opts.Events = ws.NopPublisher{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Service{
		db:         db,
		tokens:     tokens,
		events:     opts.Events,
		metrics:    opts.Metrics,
		uploader:   opts.Uploader,
		adminEmail: strings.ToLower(opts.AdminEmail),
		now:        opts.Now,
		validate:   v,
	}
}

// Page bounds a list query.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// check runs struct validation and reports the first failing field.
func (s *Service) check(in interface{}) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apierror.BadRequest("invalid input")
	}
	fe := verrs[0]
	return apierror.ValidationError(fe.Field(), validationMessage(fe))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

func requireUser(actor *models.User) error {
	if actor == nil || actor.ID == "" {
		return apierror.Unauthorized("login required")
	}
	return nil
}

func requireAdmin(actor *models.User) error {
	if err := requireUser(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return apierror.Forbidden("admin access required")
	}
	return nil
}

// canModify is the single ownership rule: the owner or any admin.
func canModify(actor *models.User, ownerID string) bool {
	return actor != nil && (actor.ID == ownerID || actor.IsAdmin())
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(resource)
	}
	return fmt.Errorf("load %s: %w", resource, err)
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}

// pushNotifications delivers stored notifications to their recipients.
// Call only after the transaction that created them has committed.
func (s *Service) pushNotifications(list []models.Notification) {
	for i := range list {
		s.events.SendToUser(list[i].UserID, ws.Event{Type: ws.EventNotification, Data: list[i]})
	}
}
