package data

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/thisisjab/signup-go/internal/filter"
	"github.com/thisisjab/signup-go/internal/form"
)

// FormSession is one mounted signup form. Sessions live in memory only and
// are dropped on Delete, on idle expiry or when the process exits.
type FormSession struct {
	BaseModel
	Form form.Form `json:"-"`
}

// FormSummary is the listing view of a session. It never carries values.
type FormSummary struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Valid     bool      `json:"valid"`
}

var FormSortSafeList = []string{"created_at", "updated_at", "-created_at", "-updated_at"}

type FormModel struct {
	mu      sync.Mutex
	forms   map[uuid.UUID]*FormSession
	ttl     time.Duration
	options []form.Option
	now     func() time.Time
}

// NewFormModel returns an empty store. Sessions untouched for longer than ttl
// are treated as gone; a zero ttl disables expiry.
func NewFormModel(ttl time.Duration, opts ...form.Option) *FormModel {
	return &FormModel{
		forms:   make(map[uuid.UUID]*FormSession),
		ttl:     ttl,
		options: opts,
		now:     time.Now,
	}
}

func (m *FormModel) Insert(ctx context.Context) (*FormSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := m.now()
	session := &FormSession{
		BaseModel: BaseModel{ID: id, CreatedAt: now, UpdatedAt: now, Version: 1},
		Form:      form.New(m.options...),
	}

	m.mu.Lock()
	m.forms[id] = session
	m.mu.Unlock()

	copied := *session
	return &copied, nil
}

func (m *FormModel) Get(ctx context.Context, id uuid.UUID) (*FormSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.lookup(id)
	if !ok {
		return nil, ErrNoRecordFound
	}

	copied := *session
	return &copied, nil
}

// Update applies fn to the stored form and saves the result. Changes to the
// same session are serialised. If fn fails nothing is saved.
func (m *FormModel) Update(ctx context.Context, id uuid.UUID, fn func(form.Form) (form.Form, error)) (*FormSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.lookup(id)
	if !ok {
		return nil, ErrNoRecordFound
	}

	next, err := fn(session.Form)
	if err != nil {
		return nil, err
	}

	session.Form = next
	session.UpdatedAt = m.now()
	session.Version++

	copied := *session
	return &copied, nil
}

func (m *FormModel) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(id); !ok {
		return ErrNoRecordFound
	}

	delete(m.forms, id)
	return nil
}

// List returns one page of session summaries ordered by filters.Sort.
func (m *FormModel) List(ctx context.Context, filters filter.Filters) ([]FormSummary, *filter.PaginationMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	summaries := make([]FormSummary, 0, len(m.forms))
	for id := range m.forms {
		session, ok := m.lookup(id)
		if !ok {
			continue
		}
		summaries = append(summaries, FormSummary{
			ID:        session.ID,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
			Valid:     session.Form.Valid(),
		})
	}
	m.mu.Unlock()

	column := filters.SortColumn()
	desc := filters.SortDirection() == "DESC"
	slices.SortFunc(summaries, func(a, b FormSummary) int {
		ta, tb := a.CreatedAt, b.CreatedAt
		if column == "updated_at" {
			ta, tb = a.UpdatedAt, b.UpdatedAt
		}
		c := ta.Compare(tb)
		if c == 0 {
			c = slices.Compare(a.ID[:], b.ID[:])
		}
		if desc {
			c = -c
		}
		return c
	})

	metadata, err := filter.CalculatePaginationMetadata(len(summaries), filters.Page, filters.PageSize)
	if err != nil {
		return nil, nil, err
	}

	start := min(filters.Offset(), len(summaries))
	end := min(start+filters.Limit(), len(summaries))
	return summaries[start:end], metadata, nil
}

// DeleteIdle removes every session not updated within the ttl and reports
// how many were removed.
func (m *FormModel) DeleteIdle() int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, session := range m.forms {
		if m.expired(session) {
			delete(m.forms, id)
			removed++
		}
	}
	return removed
}

func (m *FormModel) lookup(id uuid.UUID) (*FormSession, bool) {
	session, ok := m.forms[id]
	if !ok || m.expired(session) {
		return nil, false
	}
	return session, true
}

func (m *FormModel) expired(session *FormSession) bool {
	return m.ttl > 0 && m.now().Sub(session.UpdatedAt) > m.ttl
}
