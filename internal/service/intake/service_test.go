package intake

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmehdipour/enroll-gateway/internal/model"
	"github.com/jmehdipour/enroll-gateway/internal/notify"
	"github.com/jmehdipour/enroll-gateway/internal/payload"
	"github.com/jmehdipour/enroll-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.SMS
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, sms model.SMS) notify.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sms)
	if _, ok := ctx.Deadline(); !ok {
		return notify.Result{Attempted: true, Err: errors.New("no deadline on sms context")}
	}
	if ctx.Err() != nil {
		return notify.Result{Attempted: true, Err: ctx.Err()}
	}
	return notify.Result{Attempted: true, Provider: "fake", MessageID: sms.ID, Err: r.err}
}

// stubRepo wraps a real repository and injects failures.
type stubRepo struct {
	repository.EnrollmentsRepository
	getErr      error
	insertErr   error
	lostRace    bool
	afterInsert func()
}

func (s *stubRepo) GetByEmail(ctx context.Context, email string) (*model.Enrollment, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.EnrollmentsRepository.GetByEmail(ctx, email)
}

func (s *stubRepo) InsertIfAbsent(ctx context.Context, e model.Enrollment) (bool, error) {
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if s.lostRace {
		// another delivery stores the same email first
		other := e
		other.ID = e.ID + "_other"
		if _, err := s.EnrollmentsRepository.InsertIfAbsent(ctx, other); err != nil {
			return false, err
		}
		return false, nil
	}
	ok, err := s.EnrollmentsRepository.InsertIfAbsent(ctx, e)
	if s.afterInsert != nil {
		s.afterInsert()
	}
	return ok, err
}

func fileRepo(t *testing.T) repository.EnrollmentsRepository {
	return repository.NewFileEnrollmentsRepository(filepath.Join(t.TempDir(), "enrolled.json"))
}

var ana = payload.Submission{Name: "Ana", Email: "ana@x.com", Telephone: "+33600000000"}

func TestSubmit_NewEnrollmentSendsOneSMS(t *testing.T) {
	repo := fileRepo(t)
	sms := &recordingNotifier{}
	svc := New(repo, sms, nil, Options{RequireTelephone: true})
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	out, err := svc.Submit(context.Background(), "sub_123", ana)
	require.NoError(t, err)

	assert.True(t, out.Created)
	assert.Equal(t, "sub_123", out.Enrollment.ID)
	assert.Equal(t, fixed, out.Enrollment.EnrolledAt)
	assert.True(t, out.Notification.OK())

	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+33600000000", sms.sent[0].Phone)
	assert.Equal(t, "Hi Ana, your enrollment has been confirmed! Welcome to our program.", sms.sent[0].Text)
	assert.NotEmpty(t, sms.sent[0].ID)

	stored, err := repo.GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "sub_123", stored.ID)
}

func TestSubmit_IsIdempotentPerEmail(t *testing.T) {
	repo := fileRepo(t)
	sms := &recordingNotifier{}
	svc := New(repo, sms, nil, Options{})

	first, err := svc.Submit(context.Background(), "sub_1", ana)
	require.NoError(t, err)
	assert.True(t, first.Created)

	second, err := svc.Submit(context.Background(), "sub_2", ana)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "sub_1", second.Enrollment.ID)
	assert.False(t, second.Notification.Attempted)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, sms.sent, 1)
}

func TestSubmit_EmailMatchIsCaseSensitive(t *testing.T) {
	repo := fileRepo(t)
	svc := New(repo, nil, nil, Options{})

	_, err := svc.Submit(context.Background(), "sub_1", ana)
	require.NoError(t, err)

	upper := ana
	upper.Email = "ANA@x.com"
	out, err := svc.Submit(context.Background(), "sub_2", upper)
	require.NoError(t, err)
	assert.True(t, out.Created)
}

func TestSubmit_SMSFailureDoesNotFailIntake(t *testing.T) {
	repo := fileRepo(t)
	svc := New(repo, &recordingNotifier{err: errors.New("provider down")}, nil, Options{})

	out, err := svc.Submit(context.Background(), "sub_1", ana)
	require.NoError(t, err)

	assert.True(t, out.Created)
	assert.True(t, out.Notification.Attempted)
	assert.ErrorContains(t, out.Notification.Err, "provider down")

	n, _ := repo.Count(context.Background())
	assert.Equal(t, 1, n)
}

func TestSubmit_SMSSurvivesCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// client goes away right after the row is stored
	repo := &stubRepo{EnrollmentsRepository: fileRepo(t), afterInsert: cancel}
	svc := New(repo, &recordingNotifier{}, nil, Options{})

	out, err := svc.Submit(ctx, "sub_1", ana)
	require.NoError(t, err)
	assert.True(t, out.Notification.OK())
}

func TestSubmit_NoTelephoneSkipsSMS(t *testing.T) {
	sms := &recordingNotifier{}
	svc := New(fileRepo(t), sms, nil, Options{})

	out, err := svc.Submit(context.Background(), "sub_1", payload.Submission{Name: "Bob", Email: "bob@x.com"})
	require.NoError(t, err)

	assert.True(t, out.Created)
	assert.False(t, out.Notification.Attempted)
	assert.Empty(t, sms.sent)
}

func TestSubmit_ValidatesRequiredFields(t *testing.T) {
	svc := New(fileRepo(t), nil, nil, Options{RequireTelephone: true})

	_, err := svc.Submit(context.Background(), "sub_1", payload.Submission{Name: "Bob", Email: "bob@x.com"})

	var verr *payload.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{payload.FieldTelephone}, verr.Missing)
}

func TestSubmit_StorageErrors(t *testing.T) {
	boom := errors.New("disk full")

	_, err := New(&stubRepo{EnrollmentsRepository: fileRepo(t), getErr: boom}, nil, nil, Options{}).
		Submit(context.Background(), "sub_1", ana)
	assert.ErrorIs(t, err, boom)

	sms := &recordingNotifier{}
	_, err = New(&stubRepo{EnrollmentsRepository: fileRepo(t), insertErr: boom}, sms, nil, Options{}).
		Submit(context.Background(), "sub_1", ana)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, sms.sent, "no sms when nothing was stored")
}

func TestSubmit_LostInsertRaceIsAlreadyEnrolled(t *testing.T) {
	sms := &recordingNotifier{}
	svc := New(&stubRepo{EnrollmentsRepository: fileRepo(t), lostRace: true}, sms, nil, Options{})

	out, err := svc.Submit(context.Background(), "sub_1", ana)
	require.NoError(t, err)
	assert.False(t, out.Created)
	assert.Equal(t, "sub_1_other", out.Enrollment.ID)
	assert.Empty(t, sms.sent)
}

func TestSubmit_ReusedSubmissionIDWithOtherEmailFails(t *testing.T) {
	repo := fileRepo(t)
	sms := &recordingNotifier{}
	svc := New(repo, sms, nil, Options{})

	_, err := svc.Submit(context.Background(), "sub_1", ana)
	require.NoError(t, err)

	bob := payload.Submission{Name: "Bob", Email: "bob@x.com", Telephone: "+33611111111"}
	_, err = svc.Submit(context.Background(), "sub_1", bob)
	require.ErrorIs(t, err, ErrNotStored)

	got, err := repo.GetByEmail(context.Background(), "bob@x.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, sms.sent, 1)
}
