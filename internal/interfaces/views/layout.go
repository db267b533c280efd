package views

import (
	"slackvite/internal/domain"
	"slackvite/internal/infrastructure/slack"
	"slackvite/internal/pkg/markdown"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	gomponents "maragu.dev/gomponents"
	html "maragu.dev/gomponents/html"
)

// Site holds the per-deployment values every page shows.
type Site struct {
	CodeOfConduct string
	LoginURL      string
}

// Page is the request-scoped data for the shared layout.
type Page struct {
	Site
	Team    *slack.Team
	Member  *domain.Member
	Flashes []string
}

// TeamName falls back to a generic label when team.info was not fetched.
func (p Page) TeamName() string {
	if p.Team == nil || p.Team.Name == "" {
		return "our Slack"
	}
	return p.Team.Name
}

// Render writes an HTML page with the given status.
func Render(c *fiber.Ctx, status int, node gomponents.Node) error {
	c.Status(status)
	c.Type("html", "utf-8")
	return node.Render(c)
}

func document(title string, body ...gomponents.Node) gomponents.Node {
	return html.Doctype(html.HTML(
		html.Lang("en"),
		html.Head(
			html.Meta(html.Charset("utf-8")),
			html.Meta(html.Name("viewport"), html.Content("width=device-width, initial-scale=1")),
			html.TitleEl(gomponents.Text(title)),
			html.Link(html.Rel("stylesheet"), html.Href("https://cdn.jsdelivr.net/npm/@primer/css@22.1.0/dist/primer.min.css")),
		),
		html.Body(html.Main(html.Class("container-md p-4"), gomponents.Group(body))),
	))
}

func layout(p Page, title string, body ...gomponents.Node) gomponents.Node {
	return document(title+" | "+p.TeamName(),
		html.Header(
			html.Class("d-flex flex-justify-between flex-items-center mb-4"),
			html.H1(html.Class("h2"), html.A(html.Href("/"), gomponents.Text("Join "+p.TeamName()))),
			userNav(p),
		),
		flashes(p.Flashes),
		gomponents.Group(body),
		codeOfConduct(p.CodeOfConduct),
	)
}

func userNav(p Page) gomponents.Node {
	if p.Member.IsAuthenticated() {
		return html.Nav(
			html.A(html.Class("mr-3"), html.Href("/applications"), gomponents.Text("Applications")),
			html.A(html.Href("/logout"), gomponents.Text("Log out")),
		)
	}
	return gomponents.If(p.LoginURL != "",
		html.A(html.Class("btn"), html.Href(p.LoginURL), gomponents.Text("Sign in with Slack")),
	)
}

func flashes(msgs []string) gomponents.Node {
	if len(msgs) == 0 {
		return nil
	}
	return html.Div(html.Class("flash mb-3"),
		html.Ul(gomponents.Map(msgs, func(m string) gomponents.Node {
			return html.Li(gomponents.Text(m))
		})),
	)
}

// codeOfConduct shows a link for a URL and renders anything else as markdown.
func codeOfConduct(src string) gomponents.Node {
	if src == "" {
		return nil
	}
	if markdown.IsURL(src) {
		return html.Footer(html.Class("mt-6 color-fg-muted"),
			html.A(html.Href(src), gomponents.Text("Code of conduct")),
		)
	}
	out, err := markdown.ToHTML(src)
	if err != nil {
		log.Warn().Err(err).Msg("code of conduct render failed")
		return nil
	}
	return html.Footer(html.Class("mt-6 markdown-body"),
		html.H2(html.Class("h4"), gomponents.Text("Code of conduct")),
		gomponents.Raw(out),
	)
}
