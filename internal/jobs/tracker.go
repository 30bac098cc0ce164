package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/worxstance/worxstance/internal/store"
)

// Collection holds tracked jobs in the document store.
const Collection = "jobs"

type Status string

const (
	StatusSaved        Status = "saved"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusRejected     Status = "rejected"
	StatusArchived     Status = "archived"
)

var statuses = []Status{StatusSaved, StatusApplied, StatusInterviewing, StatusOffer, StatusRejected, StatusArchived}

func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q (expected one of %v)", s, statuses)
}

// TrackedJob is a posting the candidate keeps an eye on.
type TrackedJob struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location,omitempty"`
	SalaryRange     string   `json:"salaryRange,omitempty"`
	URL             string   `json:"url,omitempty"`
	Description     string   `json:"description"`
	Status          Status   `json:"status"`
	DateAdded       string   `json:"dateAdded"`
	DateApplied     string   `json:"dateApplied,omitempty"`
	MatchScore      int      `json:"matchScore,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	RequiredSkills  []string `json:"requiredSkills,omitempty"`
	PreferredSkills []string `json:"preferredSkills,omitempty"`
}

// Posting rebuilds the posting a tracked job was saved from. Jobs saved without the
// skill split get their keywords as required skills.
func (j *TrackedJob) Posting() *Posting {
	p := &Posting{
		ID:              j.ID,
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		SalaryRange:     j.SalaryRange,
		URL:             j.URL,
		Description:     j.Description,
		RequiredSkills:  append([]string{}, j.RequiredSkills...),
		PreferredSkills: append([]string{}, j.PreferredSkills...),
		MatchScore:      j.MatchScore,
	}
	if len(j.RequiredSkills) == 0 && len(j.PreferredSkills) == 0 {
		p.RequiredSkills = append([]string{}, j.Keywords...)
	}
	return p
}

// Tracker keeps tracked jobs in a document store.
type Tracker struct {
	store store.Store
	now   func() time.Time
}

func NewTracker(s store.Store) *Tracker {
	return &Tracker{store: s, now: time.Now}
}

// Track saves the posting with status saved. Tracking an already tracked posting keeps its status.
func (t *Tracker) Track(ctx context.Context, p *Posting) (*TrackedJob, error) {
	p.EnsureID()

	existing, err := t.Get(ctx, p.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	job := &TrackedJob{
		ID:          p.ID,
		Title:       p.Title,
		Company:     p.Company,
		Location:    p.Location,
		SalaryRange: p.SalaryRange,
		URL:         p.URL,
		Description: p.Description,
		Status:      StatusSaved,
		DateAdded:   t.now().UTC().Format(time.RFC3339),
		MatchScore:  p.MatchScore,
		Keywords:    append(append([]string{}, p.RequiredSkills...), p.PreferredSkills...),

		RequiredSkills:  p.RequiredSkills,
		PreferredSkills: p.PreferredSkills,
	}

	if err := t.store.Set(ctx, Collection, job.ID, job); err != nil {
		return nil, fmt.Errorf("track job %s: %w", job.ID, err)
	}
	return job, nil
}

func (t *Tracker) Get(ctx context.Context, id string) (*TrackedJob, error) {
	doc, err := t.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, err
	}

	var job TrackedJob
	if err := store.Decode(doc, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (t *Tracker) List(ctx context.Context) ([]*TrackedJob, error) {
	docs, err := t.store.Query(ctx, Collection)
	if err != nil {
		return nil, err
	}
	return store.DecodeAll[TrackedJob](docs)
}

// IDs returns the ids of every tracked job.
func (t *Tracker) IDs(ctx context.Context) ([]string, error) {
	list, err := t.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, j := range list {
		ids = append(ids, j.ID)
	}
	return ids, nil
}

// SetStatus moves a tracked job to status. Moving to applied stamps the application date once.
func (t *Tracker) SetStatus(ctx context.Context, id string, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}

	job, err := t.Get(ctx, id)
	if err != nil {
		return err
	}

	fields := map[string]any{"status": status}
	if status == StatusApplied && job.DateApplied == "" {
		fields["dateApplied"] = t.now().UTC().Format(time.RFC3339)
	}

	return t.store.Update(ctx, Collection, id, fields)
}

func (t *Tracker) Remove(ctx context.Context, id string) error {
	return t.store.Delete(ctx, Collection, id)
}

// Watch emits the full list of tracked jobs now and after every change until ctx is done.
// Snapshots that fail to decode are skipped.
func (t *Tracker) Watch(ctx context.Context) (<-chan []*TrackedJob, error) {
	docs, err := t.store.Subscribe(ctx, Collection)
	if err != nil {
		return nil, err
	}

	out := make(chan []*TrackedJob)
	go func() {
		defer close(out)
		for snapshot := range docs {
			list, err := store.DecodeAll[TrackedJob](snapshot)
			if err != nil {
				continue
			}
			select {
			case out <- list:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
