package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	notice "rentnotice-cloud/internal/notice/domain"
	"rentnotice-cloud/internal/observability/metrics"
	rentapp "rentnotice-cloud/internal/rent/application"
	rent "rentnotice-cloud/internal/rent/domain"
)

// Preview is a composed notice with its validation outcome. A preview is
// produced even when blocking issues exist.
type Preview struct {
	Validation notice.Validation     `json:"validation"`
	Notice     notice.ComposedNotice `json:"notice"`
}

// SendResult is a stored notice and the email queued for it.
type SendResult struct {
	Notice notice.ComposedNotice `json:"notice"`
	Email  notice.EmailMessage   `json:"email"`
}

// Service composes, stores and queues late rent notices.
type Service struct {
	tenants  rentapp.TenantStore
	settings rentapp.SettingsStore
	notices  NoticeStore
	emails   EmailQueue
	clock    rentapp.Clock
	opts     DocumentOptions
	logger   *log.Logger
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the as-of clock.
func WithClock(clock rentapp.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDocumentOptions overrides the document layout and default sections.
func WithDocumentOptions(opts DocumentOptions) Option {
	return func(s *Service) {
		s.opts = opts
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs a notice service.
func NewService(tenants rentapp.TenantStore, settings rentapp.SettingsStore, notices NoticeStore, emails EmailQueue, opts ...Option) (*Service, error) {
	if tenants == nil {
		return nil, errors.New("notice service: nil tenant store")
	}
	if settings == nil {
		return nil, errors.New("notice service: nil settings store")
	}
	if notices == nil {
		return nil, errors.New("notice service: nil notice store")
	}
	if emails == nil {
		return nil, errors.New("notice service: nil email queue")
	}
	s := &Service{
		tenants:  tenants,
		settings: settings,
		notices:  notices,
		emails:   emails,
		clock:    rentapp.SystemClock{},
		opts:     DefaultDocumentOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Preview validates and composes a notice without storing it.
func (s *Service) Preview(ctx context.Context, ownerID, tenantID string, sections notice.EditableSections) (_ *Preview, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNotice("preview", resultOf(err), time.Since(start)) }()

	tenant, settings, err := s.load(ctx, ownerID, tenantID)
	if err != nil {
		return nil, err
	}
	return &Preview{
		Validation: notice.Validate(tenant, settings),
		Notice:     notice.BuildNotice(tenant, settings, s.opts.Sections(sections), s.clock.Now()),
	}, nil
}

// Document composes a notice and renders it without storing it.
func (s *Service) Document(ctx context.Context, ownerID, tenantID string, sections notice.EditableSections, format string) (_ *RenderedDocument, _ *Preview, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNotice("document", resultOf(err), time.Since(start)) }()

	tenant, settings, err := s.load(ctx, ownerID, tenantID)
	if err != nil {
		return nil, nil, err
	}
	preview := &Preview{
		Validation: notice.Validate(tenant, settings),
		Notice:     notice.BuildNotice(tenant, settings, s.opts.Sections(sections), s.clock.Now()),
	}
	doc, err := s.export(preview.Notice, format)
	if err != nil {
		return nil, nil, err
	}
	return doc, preview, nil
}

// Save validates, composes and stores a notice for the current period.
func (s *Service) Save(ctx context.Context, ownerID, tenantID string, sections notice.EditableSections) (_ *notice.ComposedNotice, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNotice("save", resultOf(err), time.Since(start)) }()

	tenant, settings, err := s.load(ctx, ownerID, tenantID)
	if err != nil {
		return nil, err
	}
	if err := notice.Validate(tenant, settings).Err(); err != nil {
		return nil, err
	}
	n, err := s.persist(ctx, ownerID, tenant, settings, sections)
	if err != nil {
		return nil, err
	}
	s.logf("notice saved: owner=%s tenant=%s notice=%s period=%s", ownerID, tenantID, n.ID, n.Period)
	return n, nil
}

// Send validates, stores and queues a notice for email delivery to the tenant.
func (s *Service) Send(ctx context.Context, ownerID, tenantID string, sections notice.EditableSections) (_ *SendResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveNotice("send", resultOf(err), time.Since(start)) }()

	tenant, settings, err := s.load(ctx, ownerID, tenantID)
	if err != nil {
		return nil, err
	}
	if err := notice.Validate(tenant, settings).CanSend(tenant.Email); err != nil {
		return nil, err
	}
	n, err := s.persist(ctx, ownerID, tenant, settings, sections)
	if err != nil {
		return nil, err
	}
	msg := notice.NewEmail(ownerID, n.ID, tenant.Email, *n)
	msg.ID = uuid.NewString()
	id, err := s.emails.Enqueue(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: email: %w", rentapp.ErrStoreFailed, err)
	}
	msg.ID = id
	s.logf("notice queued: owner=%s tenant=%s notice=%s email=%s", ownerID, tenantID, n.ID, id)
	return &SendResult{Notice: *n, Email: msg}, nil
}

// History returns the owner's stored notices, newest first.
func (s *Service) History(ctx context.Context, ownerID string) ([]notice.ComposedNotice, error) {
	if ownerID == "" {
		return nil, rent.ErrEmptyOwnerID
	}
	list, err := s.notices.ListNotices(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: notices: %w", rentapp.ErrLoadFailed, err)
	}
	sortNewestFirst(list)
	return list, nil
}

// Get returns one stored notice.
func (s *Service) Get(ctx context.Context, ownerID, noticeID string) (*notice.ComposedNotice, error) {
	if ownerID == "" {
		return nil, rent.ErrEmptyOwnerID
	}
	n, err := s.notices.GetNotice(ctx, ownerID, noticeID)
	if err != nil {
		return nil, fmt.Errorf("%w: notice: %w", rentapp.ErrLoadFailed, err)
	}
	if n == nil {
		return nil, notice.ErrNoticeNotFound
	}
	return n, nil
}

// Export renders a stored notice exactly as it was composed.
func (s *Service) Export(ctx context.Context, ownerID, noticeID, format string) (*RenderedDocument, *notice.ComposedNotice, error) {
	n, err := s.Get(ctx, ownerID, noticeID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.export(*n, format)
	if err != nil {
		return nil, nil, err
	}
	return doc, n, nil
}

func (s *Service) export(n notice.ComposedNotice, format string) (_ *RenderedDocument, err error) {
	start := time.Now()
	defer func() {
		if format == "" {
			format = "pdf"
		}
		metrics.ObserveExport(format, resultOf(err), time.Since(start))
	}()
	return RenderNotice(n, format, s.opts)
}

func (s *Service) load(ctx context.Context, ownerID, tenantID string) (rent.Tenant, rent.OwnerSettings, error) {
	tenant, err := rentapp.LoadTenant(ctx, s.tenants, ownerID, tenantID)
	if err != nil {
		return rent.Tenant{}, rent.OwnerSettings{}, err
	}
	settings, err := s.settings.GetSettings(ctx, ownerID)
	if err != nil {
		return rent.Tenant{}, rent.OwnerSettings{}, fmt.Errorf("%w: settings: %w", rentapp.ErrLoadFailed, err)
	}
	return tenant, settings, nil
}

func (s *Service) persist(ctx context.Context, ownerID string, tenant rent.Tenant, settings rent.OwnerSettings, sections notice.EditableSections) (*notice.ComposedNotice, error) {
	n := notice.BuildNotice(tenant, settings, s.opts.Sections(sections), s.clock.Now())
	n.ID = uuid.NewString()
	id, err := s.notices.SaveNotice(ctx, ownerID, n)
	if err != nil {
		return nil, fmt.Errorf("%w: notice: %w", rentapp.ErrStoreFailed, err)
	}
	n.ID = id
	return &n, nil
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

func resultOf(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	var verr *notice.ValidationError
	if errors.As(err, &verr) || errors.Is(err, notice.ErrMissingRecipient) {
		return metrics.ResultBlocked
	}
	return metrics.ResultError
}

func sortNewestFirst(list []notice.ComposedNotice) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
