package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vovakirdan/debatewire-sdk-go/debatewire"
	"github.com/vovakirdan/debatewire-sdk-go/debatewire/rest"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", ErrorStyle.Render("✗"), msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", SuccessStyle.Render("✓"), msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", MutedStyle.Render("·"), msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "%s %s\n", WarningStyle.Render("!"), msg)
}

func (f *Formatter) Banner(b debatewire.LoopBanner) {
	fmt.Fprintln(f.w, RenderBanner(b))
}

func (f *Formatter) FeedRows(rows []debatewire.FeedRow) {
	if len(rows) == 0 {
		f.Info("No activity yet")
		return
	}
	for _, r := range rows {
		fmt.Fprintln(f.w, RenderFeedRow(r))
	}
}

func (f *Formatter) Transcript(topic string, rows []debatewire.TranscriptRow) {
	if topic != "" {
		fmt.Fprintln(f.w, TitleStyle.Render(topic))
	}
	for _, r := range rows {
		fmt.Fprintln(f.w, RenderTranscriptRow(r))
	}
}

func (f *Formatter) Verdict(v debatewire.VerdictView) {
	fmt.Fprintln(f.w, RenderVerdict(v))
}

func (f *Formatter) LoopStatus(st *rest.LoopStatus) {
	state := "stopped"
	if st.Running {
		state = "running"
	}
	fmt.Fprintf(f.w, "Loop %s · %d debates run\n", state, st.DebatesRun)
	if st.CurrentTopic != nil && *st.CurrentTopic != "" {
		category := debatewire.InferCategory(*st.CurrentTopic)
		if st.CurrentCategory != nil && *st.CurrentCategory != "" {
			category = *st.CurrentCategory
		}
		fmt.Fprintf(f.w, "  %s %s\n", StyleForCategory(category).Render("["+category+"]"), *st.CurrentTopic)
	}
}

func (f *Formatter) DebateListHeader() {
	fmt.Fprintln(f.w, TitleStyle.Render("Debates"))
}

func (f *Formatter) DebateListItem(d rest.DebateInfo) {
	fmt.Fprintf(f.w, "  %s %-9s %s %s\n",
		MutedStyle.Render(fmt.Sprintf("#%-4d", d.ID)),
		d.Status,
		d.Topic,
		MutedStyle.Render(formatAge(d.StartedAt.Time)),
	)
}

func (f *Formatter) Validation(res *rest.ValidationResult) {
	fmt.Fprintf(f.w, "Theory #%d: %s\n", res.TheoryID, StyleForOutcome(res.Verdict).Render(res.Verdict))
	if res.ValidatorResponse != "" {
		fmt.Fprintf(f.w, "  %s\n", res.ValidatorResponse)
	}
}

// RenderBanner renders the loop banner line, or a muted label when hidden.
func RenderBanner(b debatewire.LoopBanner) string {
	if !b.Visible {
		return MutedStyle.Render(b.Label)
	}
	return BannerStyle.Render(b.Label)
}

func RenderFeedRow(r debatewire.FeedRow) string {
	badge := StyleForCategory(r.Category).Render("[" + r.Category + "]")
	ts := MutedStyle.Render(formatClock(r.Timestamp))
	switch r.Kind {
	case debatewire.FeedConclusion:
		return fmt.Sprintf("%s %s %s %s: %s", ts, badge, r.Topic, SpeakerStyle.Render(r.Participant), truncate(r.Content, 120))
	case debatewire.FeedVerdict:
		line := fmt.Sprintf("%s %s %s", ts, badge, r.Topic)
		if r.Verdict != nil && r.Verdict.Outcome != "" {
			line += " → " + StyleForOutcome(r.Verdict.Outcome).Render(r.Verdict.Outcome)
			if r.Verdict.Confidence != "" {
				line += " " + MutedStyle.Render("("+r.Verdict.Confidence+")")
			}
		} else {
			line += " " + MutedStyle.Render("concluded")
		}
		return line
	default:
		line := fmt.Sprintf("%s %s %s", ts, badge, r.Topic)
		if len(r.Participants) > 0 {
			line += " " + MutedStyle.Render(strings.Join(r.Participants, ", "))
		}
		return line
	}
}

func RenderTranscriptRow(r debatewire.TranscriptRow) string {
	switch r.Kind {
	case debatewire.EntryDivider:
		return DividerStyle.Render("── " + r.Text + " ──")
	case debatewire.EntrySystem:
		return MutedStyle.Render(r.Text)
	default:
		text := r.Text
		if r.Streaming {
			text += "▍"
		}
		return SpeakerStyle.Render(r.Participant) + ": " + text
	}
}

func RenderVerdict(v debatewire.VerdictView) string {
	var b strings.Builder
	b.WriteString("Verdict: ")
	outcome := v.Outcome
	if outcome == "" {
		outcome = "none"
	}
	b.WriteString(StyleForOutcome(v.Outcome).Render(outcome))
	if v.Confidence != "" {
		b.WriteString(" " + MutedStyle.Render("("+v.Confidence+")"))
	}
	for _, s := range v.Scores {
		fmt.Fprintf(&b, "\n  %s %.1f", SpeakerStyle.Render(s.Participant), s.Score)
	}
	return b.String()
}

func RenderState(name string, s debatewire.ConnectionState) string {
	return name + " " + StyleForState(s).Render(s.String())
}

func formatClock(t time.Time) string {
	if t.IsZero() {
		return "--:--:--"
	}
	return t.Local().Format("15:04:05")
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t).Round(time.Minute)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Local().Format("2006-01-02")
	}
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
