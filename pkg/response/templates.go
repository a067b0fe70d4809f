package response

import (
	"fmt"
	"strings"

	"candidate-router/internal/entity"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/livefacts"
)

const maxListed = 3

// DefaultRegistry holds the standard (non-pending) templates.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(intent.PaymentInquiry, &factTemplate{
		noData:   mustParse("payment_no_data", "Hi {{.Name}}, I can't see your payment details right now. Let me have our team confirm your payment status and get back to you."),
		verified: renderEarnings,
		escalate: true,
	})
	r.Register(intent.ShiftInquiry, &factTemplate{
		noData:   mustParse("shift_no_data", "Hi {{.Name}}, I can't load your schedule at the moment. Let me have our team confirm your upcoming shifts."),
		verified: renderShifts,
		escalate: true,
	})
	r.Register(intent.ApplicationStatus, &factTemplate{
		noData:   mustParse("application_no_data", "Hi {{.Name}}, I can't see your application details right now. Let me have our team confirm where things stand."),
		verified: renderApplications,
		escalate: true,
	})
	r.Register(intent.JobSearch, &factTemplate{
		noData:   mustParse("jobs_no_data", "Hi {{.Name}}, I can't load the current openings right now. Let me have our team confirm what's available for you."),
		verified: renderJobs,
		escalate: true,
	})
	r.Register(intent.DocumentUpload, &factTemplate{
		noData:   mustParse("documents_no_data", "Hi {{.Name}}, you can upload documents from the Documents section of the app. I can't see their review status right now, so let me have our team confirm."),
		verified: renderDocuments,
		escalate: true,
	})

	r.Register(intent.InterviewScheduling, newStaticTemplate("interview",
		"Hi {{.Name}}, I'd be glad to help you arrange an interview. Our recruiting team will reach out with the available times.", true))
	r.Register(intent.AccountHelp, newStaticTemplate("account",
		"Hi {{.Name}}, you can reset your password from the login screen using \"Forgot password\". If you're still locked out, reply here and our team will take a look.", false))
	r.Register(intent.CancellationRequest, newStaticTemplate("cancellation",
		"Hi {{.Name}}, I've passed your request to our operations team. They will confirm the next steps with you directly.", true))
	r.Register(intent.Greeting, newStaticTemplate("greeting",
		"Hi {{.Name}}! How can I help you today?", false))

	return r
}

// DefaultPendingRegistry holds templates for candidates still being onboarded.
// None of them mention account values: pending candidates have none.
func DefaultPendingRegistry() (*Registry, TemplateRenderer) {
	r := NewRegistry()

	r.Register(intent.PaymentInquiry, newStaticTemplate("pending_payment",
		"Hi {{.Name}}, payments start once your account is activated and you've worked your first shift. Our team will walk you through how pay works.", false))
	r.Register(intent.ShiftInquiry, newStaticTemplate("pending_shift",
		"Hi {{.Name}}, shifts open up as soon as your onboarding is complete. We'll let you know when you can start booking.", false))
	r.Register(intent.InterviewScheduling, newStaticTemplate("pending_interview",
		"Thanks {{.Name}}! Our recruiting team will reach out to schedule your interview.", false))
	r.Register(intent.OnboardingHelp, newStaticTemplate("pending_onboarding",
		"Welcome {{.Name}}! To finish onboarding, complete your profile, upload your identity documents and book an orientation session in the app.", false))
	r.Register(intent.DocumentUpload, newStaticTemplate("pending_documents",
		"Hi {{.Name}}, you can upload your documents from the Documents section of the app. Our team reviews them as part of onboarding.", false))
	r.Register(intent.ApplicationStatus, newStaticTemplate("pending_application",
		"Hi {{.Name}}, your application is still being reviewed. Our team will follow up with you as soon as there is news.", false))

	generic := newStaticTemplate("pending_generic",
		"Thanks for your message, {{.Name}}. Your account is still being set up, so our team will follow up with you shortly.", false)

	return r, generic
}

func greetingName(c entity.CandidateContext) string {
	return newTemplateData(c).Name
}

func renderEarnings(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool) {
	if facts.Earnings == nil {
		return Rendered{}, false
	}
	e := facts.Earnings
	if e.IsZero() {
		return Rendered{
			Content: fmt.Sprintf("Hi %s, there are no earnings recorded on your account yet. Let me have our team confirm whether anything is still being processed.", greetingName(c)),
			Empty:   true,
		}, true
	}
	return Rendered{
		Content: fmt.Sprintf("Hi %s, here is what I can see on your account: %s available, %s pending and %s paid out so far.",
			greetingName(c), FormatMoney(e.Available), FormatMoney(e.Pending), FormatMoney(e.Paid)),
	}, true
}

func renderShifts(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool) {
	if facts.UpcomingShifts == nil {
		return Rendered{}, false
	}
	if len(facts.UpcomingShifts) == 0 {
		return Rendered{
			Content: fmt.Sprintf("Hi %s, you have no upcoming shifts booked at the moment. Let me have our team confirm if something is missing.", greetingName(c)),
			Empty:   true,
		}, true
	}

	var lines []string
	for i, s := range facts.UpcomingShifts {
		if i == maxListed {
			break
		}
		line := fmt.Sprintf("- %s: %s", s.StartsAt.Format("Mon 2 Jan, 15:04"), s.Title)
		if s.Location != "" {
			line += " at " + s.Location
		}
		lines = append(lines, line)
	}
	return Rendered{
		Content: fmt.Sprintf("Hi %s, your next %s:\n%s", greetingName(c), plural(len(lines), "shift", "shifts"), strings.Join(lines, "\n")),
	}, true
}

func renderApplications(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool) {
	if facts.Applications == nil {
		return Rendered{}, false
	}
	if len(facts.Applications) == 0 {
		return Rendered{
			Content: fmt.Sprintf("Hi %s, I don't see any applications on your account. Let me have our team confirm.", greetingName(c)),
			Empty:   true,
		}, true
	}

	var lines []string
	for i, a := range facts.Applications {
		if i == maxListed {
			break
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", a.JobTitle, a.Status))
	}
	return Rendered{
		Content: fmt.Sprintf("Hi %s, here is the latest on your applications:\n%s", greetingName(c), strings.Join(lines, "\n")),
	}, true
}

func renderJobs(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool) {
	if facts.OpenJobs == nil {
		return Rendered{}, false
	}
	if len(facts.OpenJobs) == 0 {
		return Rendered{
			Content: fmt.Sprintf("Hi %s, there are no open positions matching your profile right now. Let me have our team confirm and keep an eye out for you.", greetingName(c)),
			Empty:   true,
		}, true
	}

	var lines []string
	for i, j := range facts.OpenJobs {
		if i == maxListed {
			break
		}
		line := "- " + j.Title
		if j.Location != "" {
			line += " in " + j.Location
		}
		if j.PayRate > 0 {
			line += fmt.Sprintf(" (%s/hr)", FormatMoney(j.PayRate))
		}
		lines = append(lines, line)
	}
	return Rendered{
		Content: fmt.Sprintf("Hi %s, here are some open positions:\n%s", greetingName(c), strings.Join(lines, "\n")),
	}, true
}

func renderDocuments(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool) {
	if facts.Documents == nil {
		return Rendered{}, false
	}
	if len(facts.Documents) == 0 {
		return Rendered{
			Content: fmt.Sprintf("Hi %s, I don't see any documents on file yet. You can upload them from the Documents section of the app.", greetingName(c)),
			Empty:   true,
		}, true
	}

	var lines []string
	for _, d := range facts.Documents {
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Name, d.Status))
	}
	return Rendered{
		Content: fmt.Sprintf("Hi %s, here is the status of your documents:\n%s", greetingName(c), strings.Join(lines, "\n")),
	}, true
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return fmt.Sprintf("%d %s", n, many)
}
