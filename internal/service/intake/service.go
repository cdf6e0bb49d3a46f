package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/metrics"
	"github.com/jmehdipour/enroll-gateway/internal/model"
	"github.com/jmehdipour/enroll-gateway/internal/notify"
	"github.com/jmehdipour/enroll-gateway/internal/payload"
	"github.com/jmehdipour/enroll-gateway/internal/repository"
	"github.com/jmehdipour/enroll-gateway/internal/util"
	"go.uber.org/zap"
)

// ErrNotStored is returned when the insert was refused but the email is not
// enrolled, so the submission was lost.
var ErrNotStored = errors.New("enrollment not stored")

// Outcome is the result of a successful Submit.
type Outcome struct {
	Enrollment   model.Enrollment
	Created      bool          // false when the email was already enrolled
	Notification notify.Result // zero value when no SMS was attempted
}

// Service records enrollments and sends the confirmation SMS.
type Service struct {
	repo             repository.EnrollmentsRepository
	notifier         notify.Notifier
	log              *zap.Logger
	requireTelephone bool
	smsTimeout       time.Duration
	now              func() time.Time
}

type Options struct {
	RequireTelephone bool
	SMSTimeout       time.Duration // default 5s
}

// New constructs the intake service. A nil notifier disables SMS.
func New(repo repository.EnrollmentsRepository, notifier notify.Notifier, log *zap.Logger, opts Options) *Service {
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if opts.SMSTimeout <= 0 {
		opts.SMSTimeout = 5 * time.Second
	}
	return &Service{
		repo:             repo,
		notifier:         notifier,
		log:              log,
		requireTelephone: opts.RequireTelephone,
		smsTimeout:       opts.SMSTimeout,
		now:              time.Now,
	}
}

// RequireTelephone reports whether submissions without a telephone are rejected.
func (s *Service) RequireTelephone() bool { return s.requireTelephone }

// Submit records an authenticated submission. Replays for a known email are
// successful no-ops. Once the record is stored nothing can turn the call into
// a failure: SMS errors are only logged and reported in Outcome.Notification.
func (s *Service) Submit(ctx context.Context, submissionID string, sub payload.Submission) (Outcome, error) {
	if err := sub.Validate(s.requireTelephone); err != nil {
		return Outcome{}, err
	}
	s.log.Debug("submission received", zap.String("id", submissionID), zap.Strings("fields", sub.Fields))

	if n, err := s.repo.Count(ctx); err == nil {
		s.log.Debug("enrolled users count", zap.Int("count", n))
	}

	existing, err := s.repo.GetByEmail(ctx, sub.Email)
	if err != nil {
		return Outcome{}, fmt.Errorf("lookup by email: %w", err)
	}
	if existing != nil {
		s.log.Info("already enrolled", zap.String("email", sub.Email), zap.String("id", existing.ID))
		return Outcome{Enrollment: *existing}, nil
	}

	e := model.Enrollment{
		ID:           submissionID,
		Name:         sub.Name,
		Email:        sub.Email,
		Telephone:    sub.Telephone,
		Location:     sub.Location,
		Newsletter:   sub.Newsletter,
		NiveauEtudes: sub.NiveauEtudes,
		Ecole:        sub.Ecole,
		EnrolledAt:   s.now().UTC(),
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, e)
	if err != nil {
		return Outcome{}, fmt.Errorf("insert enrollment: %w", err)
	}
	if !inserted {
		// either a concurrent delivery stored this email first, or the
		// submission id is already taken by another email
		stored, err := s.repo.GetByEmail(ctx, e.Email)
		if err != nil {
			return Outcome{}, fmt.Errorf("lookup after insert conflict: %w", err)
		}
		if stored == nil {
			return Outcome{}, fmt.Errorf("%w: submission id %s is taken", ErrNotStored, e.ID)
		}
		s.log.Info("enrollment already present on insert", zap.String("email", e.Email), zap.String("id", stored.ID))
		return Outcome{Enrollment: *stored}, nil
	}

	s.log.Info("enrollment saved", zap.String("id", e.ID), zap.String("email", e.Email))

	return Outcome{Enrollment: e, Created: true, Notification: s.confirm(ctx, e)}, nil
}

// confirm sends the confirmation SMS, bounded by smsTimeout.
func (s *Service) confirm(ctx context.Context, e model.Enrollment) notify.Result {
	if _, noop := s.notifier.(notify.Noop); noop || e.Telephone == "" {
		metrics.SMSTotal.WithLabelValues("skipped").Inc()
		return notify.Result{}
	}

	sms := model.SMS{
		ID:    util.NewID(),
		Phone: util.NormalizePhone(e.Telephone),
		Text:  model.ConfirmationText(e.Name),
	}

	// the request context may be cancelled by the client once the row is stored
	ctx, cancel := context.WithTimeout(notify.WithEnrollmentID(context.WithoutCancel(ctx), e.ID), s.smsTimeout)
	defer cancel()

	res := s.notifier.Notify(ctx, sms)
	if res.Err != nil {
		metrics.SMSTotal.WithLabelValues("failed").Inc()
		s.log.Warn("confirmation sms failed",
			zap.String("id", e.ID),
			zap.String("phone", sms.Phone),
			zap.String("provider", res.Provider),
			zap.Error(res.Err),
		)
		return res
	}

	metrics.SMSTotal.WithLabelValues("sent").Inc()
	s.log.Info("confirmation sms sent",
		zap.String("id", e.ID),
		zap.String("sms_id", res.MessageID),
		zap.String("provider", res.Provider),
	)
	return res
}
