package networking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/worxstance/worxstance/internal/store"
)

// Collection holds networking contacts in the document store.
const Collection = "contacts"

type Status string

const (
	StatusNew              Status = "new"
	StatusContacted        Status = "contacted"
	StatusReplied          Status = "replied"
	StatusMeetingScheduled Status = "meeting_scheduled"
	StatusGhosted          Status = "ghosted"
	StatusConnected        Status = "connected"
)

var statuses = []Status{StatusNew, StatusContacted, StatusReplied, StatusMeetingScheduled, StatusGhosted, StatusConnected}

func ParseStatus(s string) (Status, error) {
	for _, st := range statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown contact status %q (expected one of %v)", s, statuses)
}

type Platform string

const (
	PlatformLinkedIn Platform = "LinkedIn"
	PlatformEmail    Platform = "Email"
	PlatformTwitter  Platform = "Twitter"
	PlatformOther    Platform = "Other"
)

var platforms = []Platform{PlatformLinkedIn, PlatformEmail, PlatformTwitter, PlatformOther}

// ParsePlatform matches s case-insensitively. An empty value means Other.
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PlatformOther, nil
	}
	for _, p := range platforms {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q (expected one of %v)", s, platforms)
}

type OutreachType string

const (
	OutreachConnectionRequest OutreachType = "connection_request"
	OutreachMessage           OutreachType = "message"
	OutreachEmail             OutreachType = "email"
)

// Outreach is one message sent to a contact.
type Outreach struct {
	Date    string       `json:"date"`
	Type    OutreachType `json:"type" validate:"oneof=connection_request message email"`
	Content string       `json:"content,omitempty"`
}

// Contact is a person in the candidate's job search network.
type Contact struct {
	ID              string     `json:"id"`
	Name            string     `json:"name" validate:"required"`
	Role            string     `json:"role,omitempty"`
	Company         string     `json:"company,omitempty"`
	Platform        Platform   `json:"platform" validate:"oneof=LinkedIn Email Twitter Other"`
	Status          Status     `json:"status" validate:"oneof=new contacted replied meeting_scheduled ghosted connected"`
	LastActionDate  string     `json:"lastActionDate"`
	Notes           string     `json:"notes,omitempty"`
	Email           string     `json:"email,omitempty" validate:"omitempty,email"`
	LinkedinURL     string     `json:"linkedinUrl,omitempty" validate:"omitempty,url"`
	OutreachHistory []Outreach `json:"outreachHistory,omitempty" validate:"dive"`
}

// FirstName is the first word of the contact's name.
func (c *Contact) FirstName() string {
	if fields := strings.Fields(c.Name); len(fields) > 0 {
		return fields[0]
	}
	return c.Name
}

var validate = validator.New()

func (c *Contact) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid contact %q: %w", c.Name, err)
	}
	return nil
}

var (
	firstNamePlaceholder = regexp.MustCompile(`(?i)\{\{firstName\}\}`)
	companyPlaceholder   = regexp.MustCompile(`(?i)\{\{company\}\}`)
)

// Personalize fills {{firstName}} and {{company}} in template. A nil contact leaves it as is.
func Personalize(template string, c *Contact) string {
	if c == nil {
		return template
	}

	company := strings.TrimSpace(c.Company)
	if company == "" {
		company = "your team"
	}

	out := firstNamePlaceholder.ReplaceAllLiteralString(template, c.FirstName())
	return companyPlaceholder.ReplaceAllLiteralString(out, company)
}

// Book keeps networking contacts in a document store.
type Book struct {
	store store.Store
	now   func() time.Time
}

func NewBook(s store.Store) *Book {
	return &Book{store: s, now: time.Now}
}

func (b *Book) timestamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

// Add stores a new contact under a generated id. Status defaults to new, platform to Other.
func (b *Book) Add(ctx context.Context, c *Contact) (*Contact, error) {
	if c == nil {
		return nil, errors.New("contact is required")
	}

	contact := *c
	contact.ID = ""
	contact.Name = strings.TrimSpace(contact.Name)
	contact.Role = strings.TrimSpace(contact.Role)
	contact.Company = strings.TrimSpace(contact.Company)
	contact.Email = strings.TrimSpace(contact.Email)
	contact.LinkedinURL = strings.TrimSpace(contact.LinkedinURL)
	if contact.Platform == "" {
		contact.Platform = PlatformOther
	}
	if contact.Status == "" {
		contact.Status = StatusNew
	}
	contact.LastActionDate = b.timestamp()

	if err := contact.Validate(); err != nil {
		return nil, err
	}

	id, err := b.store.Add(ctx, Collection, &contact)
	if err != nil {
		return nil, fmt.Errorf("add contact %s: %w", contact.Name, err)
	}
	contact.ID = id
	return &contact, nil
}

func (b *Book) Get(ctx context.Context, id string) (*Contact, error) {
	doc, err := b.store.Get(ctx, Collection, id)
	if err != nil {
		return nil, err
	}

	var c Contact
	if err := store.Decode(doc, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (b *Book) List(ctx context.Context) ([]*Contact, error) {
	docs, err := b.store.Query(ctx, Collection)
	if err != nil {
		return nil, err
	}
	return store.DecodeAll[Contact](docs)
}

// SetStatus moves a contact along the pipeline and stamps the action date.
func (b *Book) SetStatus(ctx context.Context, id string, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	if _, err := b.Get(ctx, id); err != nil {
		return err
	}

	return b.store.Update(ctx, Collection, id, map[string]any{
		"status":         status,
		"lastActionDate": b.timestamp(),
	})
}

// LogOutreach appends a sent message to the contact's history. A new contact becomes contacted.
func (b *Book) LogOutreach(ctx context.Context, id string, o Outreach) (*Contact, error) {
	c, err := b.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	o.Date = b.timestamp()
	if err := validate.Struct(&o); err != nil {
		return nil, fmt.Errorf("invalid outreach: %w", err)
	}

	c.OutreachHistory = append(c.OutreachHistory, o)
	c.LastActionDate = o.Date
	if c.Status == StatusNew {
		c.Status = StatusContacted
	}

	fields := map[string]any{
		"outreachHistory": c.OutreachHistory,
		"lastActionDate":  c.LastActionDate,
		"status":          c.Status,
	}
	if err := b.store.Update(ctx, Collection, id, fields); err != nil {
		return nil, fmt.Errorf("log outreach for %s: %w", id, err)
	}
	return c, nil
}

func (b *Book) Remove(ctx context.Context, id string) error {
	return b.store.Delete(ctx, Collection, id)
}
