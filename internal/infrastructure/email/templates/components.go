package templates

import (
	"bytes"
	"html/template"
	"log"
)

// LeadNotificationProps carries the captured lead details for the sales
// notification email body.
type LeadNotificationProps struct {
	FullName       string
	WorkEmail      string
	Company        string
	JobTitle       string
	Score          int
	Quality        string
	PagesVisited   string
	QuestionsAsked int
	TimeToCapture  int
	ScrollPercent  int
}

var leadNotificationTemplate = template.Must(template.New("leadNotification").Parse(`
<h2 style="margin-top: 0;">New {{.Quality}} lead captured</h2>
<p><strong>{{.FullName}}</strong> ({{.JobTitle}}) at <strong>{{.Company}}</strong></p>
<p>Email: <a href="mailto:{{.WorkEmail}}">{{.WorkEmail}}</a></p>
<table role="presentation" border="0" cellpadding="4" cellspacing="0" style="border-collapse: collapse;">
  <tr><td>Qualification score</td><td><strong>{{.Score}}</strong></td></tr>
  <tr><td>Lead quality</td><td><strong>{{.Quality}}</strong></td></tr>
  <tr><td>Pages visited</td><td>{{.PagesVisited}}</td></tr>
  <tr><td>Questions asked</td><td>{{.QuestionsAsked}}</td></tr>
  <tr><td>Time to capture</td><td>{{.TimeToCapture}}s</td></tr>
  <tr><td>Max scroll depth</td><td>{{.ScrollPercent}}%</td></tr>
</table>
<p>Follow up while the conversation is still warm.</p>`))

// GetLeadNotificationContent renders the inner HTML for a lead notification.
func GetLeadNotificationContent(props LeadNotificationProps) string {
	var buf bytes.Buffer
	if err := leadNotificationTemplate.Execute(&buf, props); err != nil {
		log.Printf("Error executing lead notification template: %v", err)
		return "<p>A new lead was captured.</p>"
	}
	return buf.String()
}
