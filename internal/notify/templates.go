package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
	"time"

	"github.com/jonathan/hiring-tracker/internal/ingestion"
)

//go:embed templates/*.html
var templateFiles embed.FS

// Message is a rendered email ready for a Sender.
type Message struct {
	To      Recipient
	Subject string
	HTML    string
	Text    string
}

// TemplateError reports a template that failed to parse or execute.
type TemplateError struct {
	Event string
	Cause error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template error: %s: %v", e.Event, e.Cause)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// Renderer turns events into email messages.
type Renderer struct {
	company   string
	loc       *time.Location
	portalURL string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewRenderer returns a Renderer signing mail as company. Interview times are
// shown in loc (UTC when nil).
func NewRenderer(company string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{company: company, loc: loc, cache: make(map[string]*template.Template)}
}

// WithPortalURL adds a link to the candidate portal at the foot of every message.
func (r *Renderer) WithPortalURL(url string) *Renderer {
	r.portalURL = url
	return r
}

type templateData struct {
	Subject     string
	Company     string
	Candidate   Recipient
	JobTitle    string
	RoundName   string
	NextRound   string
	When        string
	MeetingLink string
	Note        string
	PortalURL   string
}

// Render builds the message for e.
func (r *Renderer) Render(e Event) (*Message, error) {
	data := templateData{Company: r.company, Candidate: e.To(), PortalURL: r.portalURL}
	switch ev := e.(type) {
	case RoundPassed:
		data.Subject = fmt.Sprintf("You passed %s for %s", ev.RoundName, ev.JobTitle)
		data.JobTitle = ev.JobTitle
		data.RoundName = ev.RoundName
		data.NextRound = ev.NextRound
	case InterviewScheduled:
		data.Subject = fmt.Sprintf("%s scheduled: %s", ev.RoundName, ev.JobTitle)
		data.JobTitle = ev.JobTitle
		data.RoundName = ev.RoundName
		data.When = ev.ScheduledAt.In(r.loc).Format("Monday, 2 January 2006 at 15:04 MST")
		data.MeetingLink = ev.MeetingLink
		data.Note = ev.Note
	case CandidateHired:
		data.Subject = fmt.Sprintf("Your offer for %s", ev.JobTitle)
		data.JobTitle = ev.JobTitle
	default:
		return nil, &TemplateError{Event: e.Name(), Cause: fmt.Errorf("no template for event")}
	}

	tmpl, err := r.template(e.Name())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, &TemplateError{Event: e.Name(), Cause: err}
	}

	html := buf.String()
	return &Message{
		To:      e.To(),
		Subject: data.Subject,
		HTML:    html,
		Text:    ingestion.HTMLToText(html),
	}, nil
}

func (r *Renderer) template(name string) (*template.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.cache[name]; ok {
		return t, nil
	}
	t, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+name+".html")
	if err != nil {
		return nil, &TemplateError{Event: name, Cause: err}
	}
	r.cache[name] = t
	return t, nil
}
