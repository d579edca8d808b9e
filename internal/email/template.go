package email

import (
	"fmt"
	"strings"
	"text/template"

	"JobReach/internal/models"
)

// The outreach message is a fixed cover letter; only the company and target
// role are substituted per recipient.
const bodyText = `Hello {{.Company}} team,

I'm a cybersecurity professional focused on cloud identity and security operations.

I've been following your company's work, and I admire your approach to threat detection and operational security. It aligns closely with how I work.

My experience includes:

Azure Entra ID (Azure AD): RBAC, SSO, secure access configurations

SIEM / Splunk: alert tuning, basic detection logic, false-positive reduction

SOC workflows: alert monitoring and incident documentation

I believe my skills and mindset align well with your mission, and I'm confident I can contribute to teams working in identity, monitoring, or security operations.

Best regards
`

var bodyTemplate = template.Must(template.New("body").Parse(bodyText))

// Render builds the subject and body for one recipient.
func Render(r models.Recipient) (subject, body string, err error) {
	subject = fmt.Sprintf("Application for %s", r.TargetRole)

	var sb strings.Builder
	if err := bodyTemplate.Execute(&sb, r); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}

	return subject, sb.String(), nil
}
