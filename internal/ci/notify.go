package ci

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"suitectl/internal/template"
	"suitectl/pkg/logging"
)

// DefaultNotificationTemplate is used when Config.NotificationTemplate is empty.
const DefaultNotificationTemplate = `Suite {{ .suite }} {{ if .success }}passed{{ else }}failed{{ end }}: {{ .passed }} passed, {{ .failed }} failed, {{ .skipped }} skipped{{ with .branch }} on {{ . }}{{ end }}{{ with .build_url }} ({{ . }}){{ end }}`

// Notification is the JSON body posted to webhooks.
type Notification struct {
	ID              string  `json:"id"`
	Suite           string  `json:"suite"`
	Success         bool    `json:"success"`
	Passed          int     `json:"passed"`
	Failed          int     `json:"failed"`
	Skipped         int     `json:"skipped"`
	Total           int     `json:"total"`
	DurationSeconds float64 `json:"duration_seconds"`
	ExitCode        int     `json:"exit_code"`
	Provider        string  `json:"provider"`
	BuildNumber     string  `json:"build_number,omitempty"`
	BuildURL        string  `json:"build_url,omitempty"`
	Branch          string  `json:"branch,omitempty"`
	Commit          string  `json:"commit,omitempty"`
	Message         string  `json:"message"`
}

// NewNotification summarises r. The message is rendered from tmpl, or
// DefaultNotificationTemplate when tmpl is empty.
func NewNotification(engine *template.Engine, tmpl string, r *Result) (Notification, error) {
	n := Notification{
		ID:          r.ID,
		Suite:       r.Suite,
		Success:     r.Success,
		ExitCode:    r.ExitCode(),
		Provider:    string(r.Environment.Provider),
		BuildNumber: r.Environment.BuildNumber,
		BuildURL:    r.Environment.BuildURL,
		Branch:      r.Environment.Branch,
		Commit:      r.Environment.Commit,
	}
	if exec := r.Execution; exec != nil {
		n.Passed, n.Failed, n.Skipped = exec.Passed, exec.Failed, exec.Skipped
		n.Total = exec.Total()
		n.DurationSeconds = exec.Duration.Seconds()
	}

	if tmpl == "" {
		tmpl = DefaultNotificationTemplate
	}
	message, err := engine.Render("notification", tmpl, n.templateData(r))
	if err != nil {
		return n, err
	}
	n.Message = message
	return n, nil
}

func (n Notification) templateData(r *Result) map[string]interface{} {
	return template.MergeContexts(
		map[string]interface{}{
			"id":               n.ID,
			"suite":            n.Suite,
			"success":          n.Success,
			"passed":           n.Passed,
			"failed":           n.Failed,
			"skipped":          n.Skipped,
			"total":            n.Total,
			"duration_seconds": n.DurationSeconds,
			"exit_code":        n.ExitCode,
			"provider":         n.Provider,
			"build_number":     n.BuildNumber,
			"build_url":        n.BuildURL,
			"branch":           n.Branch,
			"commit":           n.Commit,
			"error":            r.Error,
		},
		ciVariables(r.Environment),
	)
}

func ciVariables(env Environment) map[string]interface{} {
	out := make(map[string]interface{})
	for k, v := range env.Variables() {
		out[k] = v
	}
	return out
}

// notify posts n to every webhook concurrently. Failures are logged and
// never returned, so one bad endpoint does not affect the others.
func (i *Integrator) notify(ctx context.Context, n Notification) {
	if len(i.cfg.Webhooks) == 0 {
		return
	}
	body, err := json.Marshal(n)
	if err != nil {
		logging.Error("CI", err, "Failed to encode notification for suite %s", n.Suite)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, i.cfg.notifyTimeout())
	defer cancel()

	var g errgroup.Group
	for _, url := range i.cfg.Webhooks {
		g.Go(func() error {
			if err := i.post(ctx, url, body); err != nil {
				logging.Warn("CI", "Notification to %s failed: %v", url, err)
				return nil
			}
			logging.Debug("CI", "Notified %s", url)
			return nil
		})
	}
	_ = g.Wait()
}

func (i *Integrator) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return nil
}
