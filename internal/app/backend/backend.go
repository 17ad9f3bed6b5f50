package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"paycore/internal/domain/adjustments"
	"paycore/internal/domain/attendance"
	"paycore/internal/domain/audit"
	"paycore/internal/domain/deductions"
	"paycore/internal/domain/employees"
	"paycore/internal/domain/notifications"
	"paycore/internal/domain/payroll"
	"paycore/internal/domain/reports"
	"paycore/internal/domain/requests"
	"paycore/internal/domain/rostersync"
	"paycore/internal/platform/alerts"
	cryptoutil "paycore/internal/platform/crypto"
	"paycore/internal/platform/db"
	"paycore/internal/platform/events"
	"paycore/internal/platform/jobs"
	"paycore/internal/platform/querier"
	"paycore/internal/platform/storage"
	"paycore/internal/transport/http/middleware"
)

// Backend is the full set of services bound to one organization's database.
type Backend struct {
	Name          string
	DB            querier.Querier
	Employees     *employees.Service
	Requests      *requests.Service
	Adjustments   *adjustments.Service
	Payroll       *payroll.Service
	Deductions    *deductions.Service
	Reports       *reports.Service
	Notifications *notifications.Service
	Roster        *rostersync.Service
	Attendance    *attendance.Service
	Audit         *audit.Service
	Jobs          *jobs.Service
	Idempotency   *middleware.IdempotencyStore
}

// Shared holds the collaborators every organization uses.
type Shared struct {
	Crypto    *cryptoutil.Service
	Mailer    notifications.Mailer
	MailFrom  string
	Publisher events.Publisher
	Alerts    alerts.Notifier
	Files     storage.Store
	Redis     redis.Cmdable
	Directory rostersync.Directory
	Presets   reports.Presets
	Policy    payroll.Policy
	LockTTL   time.Duration

	NotifyConcurrency int
	NotifyTimeout     time.Duration
}

func New(name string, pool querier.Querier, shared Shared) *Backend {
	publisher := shared.Publisher
	if publisher == nil {
		publisher = events.Noop()
	}
	publisher = events.WithOrganization(publisher, name)

	var files storage.Store
	if shared.Files != nil {
		files = storage.WithPrefix(shared.Files, name)
	}

	var locker db.Locker = db.NoopLocker()
	if shared.Redis != nil {
		locker = &db.RedisLocker{Client: shared.Redis, Prefix: "paycore:lock:" + name + ":", NewToken: uuid.NewString}
	}

	employeeStore := employees.NewStore(pool, shared.Crypto)
	requestsSvc := requests.NewService(requests.NewStore(pool), publisher)
	payrollSvc := payroll.NewService(payroll.NewStore(pool), payroll.Options{
		Policy:    shared.Policy,
		Locker:    locker,
		LockTTL:   shared.LockTTL,
		Publisher: publisher,
		Alerts:    shared.Alerts,
		Files:     files,
	})

	b := &Backend{
		Name:        name,
		DB:          pool,
		Employees:   employees.NewService(employeeStore),
		Requests:    requestsSvc,
		Adjustments: adjustments.NewService(requestsSvc),
		Payroll:     payrollSvc,
		Deductions:  deductions.NewService(deductions.NewStore(pool), payrollSvc, publisher),
		Reports:     reports.NewService(payrollSvc, shared.Presets, files),
		Notifications: notifications.New(notifications.NewStore(pool), payrollSvc, shared.Mailer, notifications.Options{
			From:        shared.MailFrom,
			Concurrency: shared.NotifyConcurrency,
			SendTimeout: shared.NotifyTimeout,
			Publisher:   publisher,
			Alerts:      shared.Alerts,
		}),
		Attendance:  attendance.NewService(attendance.NewStore(pool)),
		Audit:       audit.New(pool),
		Jobs:        jobs.New(pool),
		Idempotency: middleware.NewIdempotencyStore(pool),
	}
	if shared.Directory != nil {
		b.Roster = rostersync.NewService(shared.Directory, employeeStore)
	}
	return b
}

// Registry selects the backend for a request. Organization names are case
// insensitive; an empty name resolves to the default organization.
type Registry struct {
	backends    map[string]*Backend
	defaultName string
}

func NewRegistry(defaultName string) *Registry {
	return &Registry{backends: map[string]*Backend{}, defaultName: normalize(defaultName)}
}

func (r *Registry) Add(b *Backend) {
	r.backends[normalize(b.Name)] = b
}

func (r *Registry) Resolve(name string) (*Backend, error) {
	key := normalize(name)
	if key == "" {
		key = r.defaultName
	}
	b, ok := r.backends[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrUnknownOrganization, name)
	}
	return b, nil
}

// Has reports the canonical name of a known organization.
func (r *Registry) Has(name string) (string, bool) {
	b, err := r.Resolve(name)
	if err != nil {
		return "", false
	}
	return normalize(b.Name), true
}

// For returns the backend chosen by the organization middleware.
func (r *Registry) For(ctx context.Context) (*Backend, error) {
	return r.Resolve(middleware.GetOrganization(ctx))
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
