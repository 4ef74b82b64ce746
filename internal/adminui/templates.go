package adminui

import (
	"fmt"
	"html/template"
	"net/http"
)

const layoutHTML = `{{define "layout"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} · RosterRoyals admin</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;color:#222}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #ddd;padding:.4rem .6rem;text-align:left}
.err{color:#b00020}
.muted{color:#777}
nav{display:flex;gap:1rem;align-items:center;margin-bottom:1.5rem}
</style>
</head>
<body>
{{template "content" .}}
</body>
</html>{{end}}`

const loginHTML = `{{define "content"}}
<h1>Staff sign in</h1>
{{if .Error}}<p class="err">{{.Error}}</p>{{end}}
<form method="post" action="/admin/login">
<p><label>Username or email <input name="login" value="{{.Login}}" autocomplete="username" required></label></p>
<p><label>Password <input name="password" type="password" autocomplete="current-password" required></label></p>
<p><button type="submit">Sign in</button></p>
</form>
{{end}}`

const usersHTML = `{{define "content"}}
<nav>
<strong>RosterRoyals admin</strong>
<span class="muted">signed in as {{.Staff}}</span>
<form method="post" action="/admin/logout"><button type="submit">Sign out</button></form>
</nav>
<form method="get" action="/admin/users">
<input name="q" value="{{.Query}}" placeholder="id, username or email">
<button type="submit">Search</button>
</form>
{{if .Error}}<p class="err">{{.Error}}</p>{{end}}
<table>
<thead><tr><th>Username</th><th>Email</th><th>Points</th><th>Type</th><th>Joined</th><th></th></tr></thead>
<tbody>
{{range .Users}}
<tr>
<td>{{.Username}}</td>
<td>{{.Email}}</td>
<td>{{.Points}}</td>
<td>{{.Type}}</td>
<td>{{.Joined}}</td>
<td>
<form method="post" action="/admin/users/{{.ID}}/status">
{{if .Disabled}}<input type="hidden" name="disabled" value="false"><button type="submit">Enable</button>
{{else}}<input type="hidden" name="disabled" value="true"><button type="submit">Disable</button>{{end}}
</form>
</td>
</tr>
{{else}}
<tr><td colspan="6" class="muted">No users.</td></tr>
{{end}}
</tbody>
</table>
<p>
{{if gt .Page 1}}<a href="/admin/users?q={{.Query}}&page={{.PrevPage}}">Previous</a>{{end}}
{{if .HasNext}}<a href="/admin/users?q={{.Query}}&page={{.NextPage}}">Next</a>{{end}}
</p>
{{end}}`

const errorHTML = `{{define "content"}}
<h1>{{.Title}}</h1>
<p class="err">{{.Error}}</p>
<p><a href="/admin/login">Back</a></p>
{{end}}`

type templates struct {
	login  *template.Template
	users  *template.Template
	errorT *template.Template
}

type viewData struct {
	Title string
	Error string
}

type loginViewData struct {
	Title string
	Error string
	Login string
}

type usersViewData struct {
	Title    string
	Error    string
	Staff    string
	Query    string
	Page     int
	PrevPage int
	NextPage int
	HasNext  bool
	Users    []userRow
}

type userRow struct {
	ID       string
	Email    string
	Username string
	Points   int
	Type     string
	Joined   string
	Disabled bool
}

func parseTemplates() (*templates, error) {
	parse := func(name, body string) (*template.Template, error) {
		t, err := template.New(name).Parse(layoutHTML)
		if err != nil {
			return nil, err
		}
		return t.Parse(body)
	}

	login, err := parse("login", loginHTML)
	if err != nil {
		return nil, fmt.Errorf("parse login: %w", err)
	}
	users, err := parse("users", usersHTML)
	if err != nil {
		return nil, fmt.Errorf("parse users: %w", err)
	}
	errorT, err := parse("error", errorHTML)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return &templates{login: login, users: users, errorT: errorT}, nil
}

func render(w http.ResponseWriter, t *template.Template, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = t.ExecuteTemplate(w, "layout", data)
}

func (t *templates) renderLogin(w http.ResponseWriter, status int, data loginViewData) {
	render(w, t.login, status, data)
}

func (t *templates) renderUsers(w http.ResponseWriter, status int, data usersViewData) {
	render(w, t.users, status, data)
}

func (t *templates) renderError(w http.ResponseWriter, status int, title, msg string) {
	render(w, t.errorT, status, viewData{Title: title, Error: msg})
}
