package views

import (
	"fmt"
	"strconv"
	"strings"

	"slackvite/internal/domain"

	"github.com/gofiber/fiber/v2/utils"
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// ApplicationForm is the submitted (or empty) join form.
type ApplicationForm struct {
	Email  string
	Name   string
	Reason string
}

// IndexPage is the public join form. missing names blank required fields.
func IndexPage(p Page, form ApplicationForm, missing []string) gomponents.Node {
	var problem gomponents.Node
	if len(missing) > 0 {
		problem = html.P(html.Class("flash flash-error mb-3"),
			gomponents.Text("Please fill in: "+strings.Join(missing, ", ")+"."))
	}
	return layout(p, "Apply",
		html.P(gomponents.Textf("Want to join %s? Tell us a bit about yourself.", p.TeamName())),
		problem,
		html.Form(
			html.Method("post"),
			html.Action("/"),
			field("email", "E-mail", html.Input(html.Type("email"), html.Name("email"), html.ID("email"), html.Class("form-control"), html.Value(form.Email), html.Required())),
			field("name", "Name", html.Input(html.Type("text"), html.Name("name"), html.ID("name"), html.Class("form-control"), html.Value(form.Name), html.Required())),
			field("reason", "Reason", html.Textarea(html.Name("reason"), html.ID("reason"), html.Class("form-control"), html.Required(), gomponents.Text(form.Reason))),
			html.Button(html.Type("submit"), html.Class("btn btn-primary"), gomponents.Text("Apply")),
		),
	)
}

func field(id, label string, input gomponents.Node) gomponents.Node {
	return html.Div(html.Class("form-group"),
		html.Div(html.Class("form-group-header"), html.Label(html.For(id), gomponents.Text(label))),
		html.Div(html.Class("form-group-body"), input),
	)
}

// AppliedPage confirms a stored application.
func AppliedPage(p Page, app *domain.Application) gomponents.Node {
	return layout(p, "Application received",
		html.H2(gomponents.Textf("Thanks, %s!", app.Name)),
		html.P(gomponents.Textf("Your application to join %s has been received. We'll e-mail %s once an admin has reviewed it.", p.TeamName(), app.Email)),
	)
}

// ApplicationsPage is the admin console listing applications in one state.
func ApplicationsPage(p Page, current domain.State, apps []domain.Application) gomponents.Node {
	rows := gomponents.Map(apps, func(a domain.Application) gomponents.Node {
		return html.Tr(
			html.Td(gomponents.Text(a.Name)),
			html.Td(html.A(html.Href("mailto:"+a.Email), gomponents.Text(a.Email))),
			html.Td(gomponents.Text(a.Reason)),
			html.Td(gomponents.Text(a.CreatedAt.Format("2006-01-02 15:04"))),
			html.Td(gomponents.If(a.State == domain.StateNew, decisionForms(a.ID))),
		)
	})

	var table gomponents.Node = html.P(html.Class("color-fg-muted"), gomponents.Text("No applications."))
	if len(apps) > 0 {
		table = html.Table(html.Class("width-full"),
			html.THead(html.Tr(
				html.Th(gomponents.Text("Name")),
				html.Th(gomponents.Text("E-mail")),
				html.Th(gomponents.Text("Reason")),
				html.Th(gomponents.Text("Received")),
				html.Th(),
			)),
			html.TBody(rows),
		)
	}

	return layout(p, "Applications",
		stateTabs(current),
		table,
	)
}

func stateTabs(current domain.State) gomponents.Node {
	return html.Nav(html.Class("UnderlineNav mb-3"),
		html.Div(html.Class("UnderlineNav-body"),
			gomponents.Map(domain.States, func(s domain.State) gomponents.Node {
				href := "/applications/" + string(s)
				if s == domain.StateNew {
					href = "/applications"
				}
				return html.A(
					html.Href(href),
					html.Class("UnderlineNav-item"),
					gomponents.If(s == current, html.Aria("current", "page")),
					gomponents.Text(string(s)),
				)
			}),
		),
	)
}

func decisionForms(id uint) gomponents.Node {
	form := func(action, label, class string) gomponents.Node {
		return html.Form(
			html.Method("post"),
			html.Action("/applications"),
			html.Class("d-inline"),
			html.Input(html.Type("hidden"), html.Name("id"), html.Value(strconv.FormatUint(uint64(id), 10))),
			html.Input(html.Type("hidden"), html.Name("action"), html.Value(action)),
			html.Button(html.Type("submit"), html.Class(class), gomponents.Text(label)),
		)
	}
	return gomponents.Group{
		form("approve", "Approve", "btn btn-sm btn-primary mr-1"),
		form("reject", "Reject", "btn btn-sm btn-danger"),
	}
}

// ErrorPage is rendered by the error handler; it needs no team or session.
func ErrorPage(code int, message string) gomponents.Node {
	title := fmt.Sprintf("%d %s", code, utils.StatusMessage(code))
	return document(title,
		html.H1(gomponents.Text(title)),
		html.P(gomponents.Text(message)),
		html.P(html.A(html.Href("/"), gomponents.Text("Back to the start page"))),
	)
}
