package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cara = Recipient{ID: uuid.New(), Name: "Cara <Candidate>", Email: "cara@example.com"}

func TestRender(t *testing.T) {
	r := NewRenderer("Acme", nil)

	tests := []struct {
		name        string
		event       Event
		subject     string
		htmlHas     []string
		textHas     []string
		textMissing []string
	}{
		{
			name:    "round passed",
			event:   RoundPassed{Candidate: cara, JobTitle: "Backend Engineer", RoundName: "CV Screening", NextRound: "Technical Interview"},
			subject: "You passed CV Screening for Backend Engineer",
			htmlHas: []string{"<b>Technical Interview</b>", "Cara &lt;Candidate&gt;"},
			textHas: []string{"Hi Cara <Candidate>,", "The Acme hiring team"},
		},
		{
			name: "interview scheduled",
			event: InterviewScheduled{
				Candidate:   cara,
				JobTitle:    "Backend Engineer",
				RoundName:   "Onsite",
				ScheduledAt: time.Date(2026, 5, 12, 14, 30, 0, 0, time.UTC),
				MeetingLink: "https://meet.example.com/x",
			},
			subject:     "Onsite scheduled: Backend Engineer",
			htmlHas:     []string{`href="https://meet.example.com/x"`},
			textHas:     []string{"- When: Tuesday, 12 May 2026 at 14:30 UTC"},
			textMissing: []string{"<li>"},
		},
		{
			name:    "hired",
			event:   CandidateHired{Candidate: cara, JobTitle: "Backend Engineer"},
			subject: "Your offer for Backend Engineer",
			textHas: []string{"Congratulations!"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := r.Render(tt.event)
			require.NoError(t, err)
			assert.Equal(t, cara, msg.To)
			assert.Equal(t, tt.subject, msg.Subject)
			for _, s := range tt.htmlHas {
				assert.Contains(t, msg.HTML, s)
			}
			for _, s := range tt.textHas {
				assert.Contains(t, msg.Text, s)
			}
			for _, s := range tt.textMissing {
				assert.NotContains(t, msg.Text, s)
			}
			assert.NotContains(t, msg.Text, tt.subject+"\n", "title must not leak into the text part")
		})
	}
}

type unknownEvent struct{}

func (unknownEvent) Name() string  { return "unknown" }
func (unknownEvent) To() Recipient { return cara }

func TestRender_UnknownEvent(t *testing.T) {
	_, err := NewRenderer("Acme", nil).Render(unknownEvent{})
	var terr *TemplateError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "unknown", terr.Event)
}

func TestRender_PortalLink(t *testing.T) {
	event := CandidateHired{Candidate: cara, JobTitle: "Backend Engineer"}

	msg, err := NewRenderer("Acme", nil).Render(event)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "follow your applications")

	msg, err = NewRenderer("Acme", nil).WithPortalURL("https://jobs.acme.test").Render(event)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, `href="https://jobs.acme.test"`)
	assert.Contains(t, msg.Text, "follow your applications")
}
